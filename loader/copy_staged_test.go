package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integers wider than float64's 53-bit mantissa must survive the trip
// through the staging table's JSONB column into the merge statement.
func TestDecodePropertiesPreservesWideIntegers(t *testing.T) {
	encoded, err := propertiesJSON("n1", Properties{
		"big":   int64(9007199254740993),
		"index": 10000000,
	})
	require.NoError(t, err)

	props, err := decodeProperties([]byte(encoded))
	require.NoError(t, err)

	assert.Equal(t, "9007199254740993", formatCypherValue(props["big"]))
	assert.Equal(t, "10000000", formatCypherValue(props["index"]))
	assert.Contains(t, formatCypherProperties(props), "`big`: 9007199254740993")
}

func TestDecodePropertiesInvalid(t *testing.T) {
	_, err := decodeProperties([]byte("not json"))
	require.Error(t, err)
}
