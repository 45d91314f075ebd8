package qdrant

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/shophub/vectorstore"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw    string
		host   string
		port   int
		useTLS bool
	}{
		{"http://localhost:6334", "localhost", 6334, false},
		{"https://cluster.qdrant.io", "cluster.qdrant.io", 6334, true},
		{"cluster.qdrant.io:7000", "cluster.qdrant.io", 7000, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			host, port, useTLS, err := parseURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
			assert.Equal(t, tt.useTLS, useTLS)
		})
	}

	_, _, _, err := parseURL("http://localhost:notaport")
	assert.Error(t, err)
}

func TestPointUUIDIsStable(t *testing.T) {
	assert.Equal(t, pointUUID("product_5"), pointUUID("product_5"))
	assert.NotEqual(t, pointUUID("product_5"), pointUUID("product_6"))
}

func TestBuildQdrantFilter(t *testing.T) {
	assert.Nil(t, buildQdrantFilter(vectorstore.SearchFilter{}))

	f := buildQdrantFilter(vectorstore.SearchFilter{
		Kind:     vectorstore.KindProduct,
		Metadata: map[string]any{"category": "electronics"},
	})
	require.NotNil(t, f)
	require.Len(t, f.Must, 2)

	field := f.Must[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, payloadKind, field.Key)
	assert.Equal(t, vectorstore.KindProduct, field.Match.GetKeyword())
}

func TestExtractValue(t *testing.T) {
	assert.Equal(t, "x", extractValue(qdrant.NewValueString("x")))
	assert.Equal(t, int64(3), extractValue(qdrant.NewValueInt(3)))
	assert.Equal(t, true, extractValue(qdrant.NewValueBool(true)))
	assert.Nil(t, extractValue(nil))
}
