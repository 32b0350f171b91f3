package postgres

import (
	"reflect"
	"slices"
	"sync"
)

// columnField maps a db column to the index path of its struct field.
type columnField struct {
	column string
	index  []int
}

var columnCache sync.Map // map[reflect.Type][]columnField

// columnsOf walks t, including embedded structs, and caches the result.
func columnsOf(t reflect.Type) []columnField {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]columnField)
	}

	var fields []columnField
	if t.Kind() == reflect.Struct {
		collectColumns(t, nil, &fields)
	}
	columnCache.Store(t, fields)
	return fields
}

func collectColumns(t reflect.Type, prefix []int, out *[]columnField) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(slices.Clone(prefix), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectColumns(f.Type, path, out)
			continue
		}

		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		*out = append(*out, columnField{column: tag, index: path})
	}
}

// ExtractDBColumns returns the "db" tag names of T in declaration order.
//
//	cols := ExtractDBColumns[product.Product]()
//	// ["id", "deletion_mark", "version", "attributes", "code", "name", ...]
func ExtractDBColumns[T any]() []string {
	fields := columnsOf(reflect.TypeFor[T]())
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.column
	}
	return cols
}

// StructToMap converts a struct to column → value using "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	fields := columnsOf(rv.Type())
	res := make(map[string]any, len(fields))
	for _, f := range fields {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}

// StructToValues returns the values of columns in order, for COPY and
// multi-row inserts.
func StructToValues(v any, columns []string) []any {
	m := StructToMap(v)
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = m[c]
	}
	return out
}
