// Package domaintest provides in-memory repositories for service tests.
package domaintest

import (
	"context"
	"reflect"
	"sync"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
)

// DocStore is an in-memory domain.DocumentRepository. Documents are copied on
// the way in and on the way out, so a caller never shares state with the
// stored row, the same as with a database.
type DocStore[T entity.DocumentRecord] struct {
	mu   sync.Mutex
	Docs map[id.ID]T
	// Order keeps insertion order for List.
	Order []id.ID
	// Locked records GetForUpdate calls.
	Locked []id.ID
}

// NewDocStore creates an empty store.
func NewDocStore[T entity.DocumentRecord]() *DocStore[T] {
	return &DocStore[T]{Docs: make(map[id.ID]T)}
}

func (s *DocStore[T]) Create(ctx context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := doc.DocumentBase()
	if _, ok := s.Docs[base.ID]; ok {
		return apperror.NewDuplicate("document", "id", base.ID.String())
	}
	s.Docs[base.ID] = Clone(doc)
	s.Order = append(s.Order, base.ID)
	return nil
}

func (s *DocStore[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.Docs[docID]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound("document", docID.String())
	}
	return Clone(doc), nil
}

func (s *DocStore[T]) GetByNumber(ctx context.Context, number string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.Docs {
		if doc.DocumentBase().Number == number {
			return Clone(doc), nil
		}
	}
	var zero T
	return zero, apperror.NewNotFound("document", number)
}

func (s *DocStore[T]) GetForUpdate(ctx context.Context, docID id.ID) (T, error) {
	s.mu.Lock()
	s.Locked = append(s.Locked, docID)
	s.mu.Unlock()
	return s.GetByID(ctx, docID)
}

func (s *DocStore[T]) Update(ctx context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := doc.DocumentBase()
	if _, ok := s.Docs[base.ID]; !ok {
		return apperror.NewNotFound("document", base.ID.String())
	}
	s.Docs[base.ID] = Clone(doc)
	return nil
}

func (s *DocStore[T]) Delete(ctx context.Context, docID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Docs[docID]; !ok {
		return apperror.NewNotFound("document", docID.String())
	}
	delete(s.Docs, docID)
	return nil
}

func (s *DocStore[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset}
	var all []T
	for _, docID := range s.Order {
		if doc, ok := s.Docs[docID]; ok {
			all = append(all, doc)
		}
	}
	res.TotalCount = int64(len(all))

	all = all[min(filter.Offset, len(all)):]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	for _, doc := range all {
		res.Items = append(res.Items, Clone(doc))
	}
	return res, nil
}

// Clone copies the struct a document pointer refers to. Slice fields get a
// fresh backing array so element writes on either side stay local.
func Clone[T any](v T) T {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return v
	}
	cp := reflect.New(rv.Elem().Type())
	cp.Elem().Set(rv.Elem())
	copySlices(cp.Elem())
	return cp.Interface().(T)
}

func copySlices(v reflect.Value) {
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		switch {
		case f.Kind() == reflect.Slice && !f.IsNil():
			dup := reflect.MakeSlice(f.Type(), f.Len(), f.Len())
			reflect.Copy(dup, f)
			f.Set(dup)
		case f.Kind() == reflect.Struct && v.Type().Field(i).Anonymous:
			copySlices(f)
		}
	}
}

// CloneLines returns a copy of stored line rows.
func CloneLines[L any](lines []L) []L {
	if lines == nil {
		return nil
	}
	return append([]L(nil), lines...)
}
