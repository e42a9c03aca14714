package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		isRef   bool
		literal interface{}
	}{
		{
			name:  "sigil string becomes context ref",
			input: `"$config_manager"`,
			isRef: true,
		},
		{
			name:    "plain string stays literal",
			input:   `"config_manager"`,
			literal: "config_manager",
		},
		{
			name:    "number stays literal",
			input:   `30`,
			literal: float64(30),
		},
		{
			name:    "bool stays literal",
			input:   `true`,
			literal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v ArgValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.isRef, v.IsRef())
			if !tt.isRef {
				assert.Equal(t, tt.literal, v.Resolve(nil))
			}
		})
	}
}

func TestArgValue_Resolve(t *testing.T) {
	cfg := struct{ name string }{name: "cfg"}
	callCtx := Context{"config_manager": cfg}

	assert.Equal(t, cfg, ContextRef("config_manager").Resolve(callCtx))
	assert.Equal(t, "config_manager", Literal("config_manager").Resolve(callCtx))

	// Absent references resolve to nil, not an error.
	assert.Nil(t, ContextRef("missing").Resolve(callCtx))
	assert.Nil(t, ContextRef("config_manager").Resolve(nil))
}

func TestArgValue_MarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(ContextRef("config"))
	require.NoError(t, err)
	assert.Equal(t, `"$config"`, string(out))

	out, err = json.Marshal(Literal(12.5))
	require.NoError(t, err)
	assert.Equal(t, `12.5`, string(out))
}
