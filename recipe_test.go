package vstr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vstr/codec"
)

func TestReduceFromRecipe(t *testing.T) {
	optsets := [][]Option{
		nil,
		{WithCoerce(false)},
		{WithNA(nil)},
		{WithNA("NA"), WithCoerce(false)},
		{WithNA(NA)},
		{WithNA(math.NaN())},
	}

	for _, opts := range optsets {
		d := newTestDescriptor(t, opts...)
		r := d.Reduce()

		nd, err := FromRecipe(r)
		require.NoError(t, err)

		assert.True(t, DescriptorsEqual(d, nd), d.String())
		assert.Equal(t, d.String(), nd.String())
		assert.Equal(t, Independent, nd.Ownership())
		assert.NotSame(t, d.Arena(), nd.Arena())
		require.NoError(t, nd.Close())
	}
}

func TestFromRecipeOverridesOptions(t *testing.T) {
	d, err := FromRecipe(Recipe{Coerce: false, HasNA: true, NA: "x"}, WithCoerce(true), WithChunkSize(8192))
	require.NoError(t, err)
	defer d.Close()

	assert.False(t, d.Coerce())
	assert.Equal(t, "x", d.NA().Sentinel)
	assert.Equal(t, 8192, d.Arena().ChunkSize())
}

func TestRecipeCodec(t *testing.T) {
	recipes := []struct {
		name string
		r    Recipe
	}{
		{"no NA", Recipe{Coerce: true}},
		{"nil NA", Recipe{Coerce: true, HasNA: true}},
		{"string NA", Recipe{HasNA: true, NA: "N/A"}},
		{"empty string NA", Recipe{HasNA: true, NA: ""}},
		{"NaN", Recipe{Coerce: true, HasNA: true, NA: math.NaN()}},
		{"float", Recipe{HasNA: true, NA: -1.5}},
		{"int", Recipe{HasNA: true, NA: 7}},
		{"NA singleton", Recipe{Coerce: true, HasNA: true, NA: NA}},
	}

	for _, name := range []string{"json", "go-json"} {
		c, ok := codec.ByName(name)
		require.True(t, ok)

		for _, tt := range recipes {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				data, err := MarshalRecipe(c, tt.r)
				require.NoError(t, err)

				got, err := UnmarshalRecipe(c, data)
				require.NoError(t, err)

				assert.Equal(t, tt.r.Coerce, got.Coerce)
				assert.Equal(t, tt.r.HasNA, got.HasNA)
				if tt.r.HasNA {
					assert.True(t, NAEqual(tt.r.NA, got.NA), "got %#v", got.NA)
				}
			})
		}
	}
}

func TestRecipeCodecDefault(t *testing.T) {
	data, err := MarshalRecipe(nil, Recipe{HasNA: true, NA: NA})
	require.NoError(t, err)

	got, err := UnmarshalRecipe(nil, data)
	require.NoError(t, err)
	assert.Same(t, NA, got.NA)
}

func TestRecipeUnsupportedSentinel(t *testing.T) {
	_, err := MarshalRecipe(nil, Recipe{HasNA: true, NA: struct{}{}})
	require.ErrorIs(t, err, ErrUnsupportedSentinel)

	_, err = MarshalRecipe(nil, Recipe{HasNA: true, NA: &Missing{}})
	require.ErrorIs(t, err, ErrUnsupportedSentinel)

	_, err = UnmarshalRecipe(nil, []byte(`{"coerce":true,"na":{"kind":"blob"}}`))
	require.ErrorIs(t, err, ErrUnsupportedSentinel)

	_, err = UnmarshalRecipe(nil, []byte(`not json`))
	require.Error(t, err)
}

func TestDiscoverDescriptor(t *testing.T) {
	d, err := DiscoverDescriptor(3.5)
	require.NoError(t, err)
	defer d.Close()

	assert.True(t, d.Coerce())
	assert.False(t, d.NA().HasNull)
	assert.Equal(t, "StringDType()", d.String())

	_, err = DiscoverDescriptor(badText{})
	require.Error(t, err)
}
