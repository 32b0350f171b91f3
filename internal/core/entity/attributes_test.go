package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_ScanKeepsNumbersExact(t *testing.T) {
	var a Attributes
	require.NoError(t, a.Scan([]byte(`{"freight": 1234.5678901234, "port": "Jebel Ali"}`)))
	assert.Equal(t, json.Number("1234.5678901234"), a["freight"])
	assert.Equal(t, "Jebel Ali", a["port"])

	require.NoError(t, a.Scan(nil))
	assert.Nil(t, a)
}

func TestAttributes_CloneIsIndependent(t *testing.T) {
	a := Attributes{"port": "Mundra"}
	c := a.Clone()
	c["port"] = "Jebel Ali"
	assert.Equal(t, "Mundra", a["port"])
	assert.Nil(t, Attributes(nil).Clone())
}
