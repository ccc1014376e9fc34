package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Coerce bool   `json:"coerce"`
	Name   string `json:"name,omitempty"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_AgreeOnBytes(t *testing.T) {
	in := sample{Coerce: true, Name: "NA"}

	a, err := JSON{}.Marshal(in)
	require.NoError(t, err)
	b, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	var out sample
	require.NoError(t, Default.Unmarshal(a, &out))
	assert.Equal(t, in, out)
}
