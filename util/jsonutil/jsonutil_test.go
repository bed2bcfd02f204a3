package jsonutil

import (
	"math"
	"testing"

	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	ID   string `json:"id"`
	Size int    `json:"size"`
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		description   string
		input         string
		expected      sample
		errorContains string
	}{
		{
			description: "valid",
			input:       `{"id":"a1","size":3}`,
			expected:    sample{ID: "a1", Size: 3},
		},
		{
			description: "unknown fields are ignored",
			input:       `{"id":"a1","other":true}`,
			expected:    sample{ID: "a1"},
		},
		{
			description:   "wrong type",
			input:         `{"id":1}`,
			errorContains: "cannot unmarshal number into Go struct field sample.id of type string",
		},
		{
			description:   "truncated",
			input:         `{"id":`,
			errorContains: "unexpected end of JSON input",
		},
	}

	for _, test := range tests {
		var out sample
		err := Unmarshal([]byte(test.input), &out)
		if test.errorContains != "" {
			assert.IsType(t, &errortypes.FailedToUnmarshal{}, err, test.description)
			assert.Contains(t, err.Error(), test.errorContains, test.description)
			assert.NotContains(t, err.Error(), "json: ", test.description)
			continue
		}
		assert.NoError(t, err, test.description)
		assert.Equal(t, test.expected, out, test.description)
	}
}

func TestMarshal(t *testing.T) {
	b, err := Marshal(sample{ID: "a1", Size: 2})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":"a1","size":2}`, string(b))

	_, err = Marshal(math.Inf(1))
	assert.IsType(t, &errortypes.FailedToMarshal{}, err)
}
