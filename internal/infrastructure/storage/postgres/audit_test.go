package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStore_EncodeRoundTrip(t *testing.T) {
	s, err := NewAuditStore(nil)
	require.NoError(t, err)
	s.compressThreshold = 16

	small := []byte(`{"qty":1}`)
	plain, compressed, algo := s.encode(small)
	assert.Equal(t, CompressionNone, algo)
	assert.Equal(t, small, plain)
	assert.Nil(t, compressed)

	large := bytes.Repeat([]byte(`{"sku":"YARN-40S","qty":100}`), 50)
	plain, compressed, algo = s.encode(large)
	assert.Equal(t, CompressionZstd, algo)
	assert.Nil(t, plain)
	assert.Less(t, len(compressed), len(large))

	decoded, err := s.decode(plain, compressed, algo)
	require.NoError(t, err)
	assert.Equal(t, large, decoded)
}
