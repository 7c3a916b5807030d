package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"bare array", `[1,2,3]`, `[1,2,3]`},
		{"fenced block", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", `Here is the result: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} hope that helps`, `{"a":1}`},
		{"array before object text", `[{"a":1},{"b":2}]`, `[{"a":1},{"b":2}]`},
		{"nested braces", `noise {"outer":{"inner":[1,2]}} tail`, `{"outer":{"inner":[1,2]}}`},
		{"empty input", "", ""},
		{"whitespace only", "   \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}

func TestExtractJSONObjectNoJSONReturnsTrimmedInput(t *testing.T) {
	assert.Equal(t, "no structured output here", ExtractJSONObject("  no structured output here  "))
}

func TestIsResponseFormatUnsupportedError(t *testing.T) {
	assert.False(t, IsResponseFormatUnsupportedError(nil))
	assert.False(t, IsResponseFormatUnsupportedError(errors.New("rate limit exceeded")))
	assert.True(t, IsResponseFormatUnsupportedError(errors.New("400: response_format is not supported by this model")))
	assert.True(t, IsResponseFormatUnsupportedError(errors.New("json_schema mode unavailable")))
	assert.True(t, IsResponseFormatUnsupportedError(errors.New("failed to parse model output")))
}
