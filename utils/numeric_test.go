package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	v, err := ParseFloat("12.5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = ParseFloat("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = ParseFloat("abc")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"nil", nil, 0},
		{"float64", 99.5, 99.5},
		{"float32", float32(2.5), 2.5},
		{"int", 42, 42},
		{"int32", int32(7), 7},
		{"int64", int64(1000), 1000},
		{"json number", json.Number("3.25"), 3.25},
		{"plain string", "150", 150},
		{"decimal string", "99.99", 99.99},
		{"string with commas", "1,250.00", 1250},
		{"padded string", "  75 ", 75},
		{"empty string", "", 0},
		{"garbage string", "not-a-number", 0},
		{"bool", true, 0},
		{"negative string", "-20", -20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAmount(tc.in))
		})
	}
}
