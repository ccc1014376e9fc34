package vstr

import (
	"fmt"
	"math"

	"github.com/hupe1980/vstr/codec"
)

// Recipe holds the constructor arguments that rebuild an equal descriptor.
// It carries no arena state.
type Recipe struct {
	Coerce bool
	HasNA  bool
	NA     any
}

// Reduce returns the reconstruction recipe of d.
func (d *Descriptor) Reduce() Recipe {
	return Recipe{
		Coerce: d.coerce,
		HasNA:  d.na.HasNull,
		NA:     d.na.Sentinel,
	}
}

// FromRecipe builds a new Independent descriptor from r. opts may supply
// arena settings, logging and metrics; the recipe wins for coercion and NA.
func FromRecipe(r Recipe, opts ...Option) (*Descriptor, error) {
	all := append([]Option{}, opts...)
	all = append(all, WithCoerce(r.Coerce))
	if r.HasNA {
		all = append(all, WithNA(r.NA))
	}
	return NewDescriptor(all...)
}

// DiscoverDescriptor returns the descriptor used for a column inferred from
// the scalar v: coercing, without NA. It fails if v cannot be converted to
// text.
func DiscoverDescriptor(v any, opts ...Option) (*Descriptor, error) {
	if _, err := coerceText(v); err != nil {
		return nil, opError("discover", -1, err)
	}
	all := append([]Option{}, opts...)
	all = append(all, WithCoerce(true))
	return NewDescriptor(all...)
}

const (
	wireNil    = "nil"
	wireString = "string"
	wireNaN    = "nan"
	wireFloat  = "float"
	wireInt    = "int"
	wireNA     = "na"
)

type wireSentinel struct {
	Kind   string  `json:"kind"`
	String string  `json:"string,omitempty"`
	Float  float64 `json:"float,omitempty"`
	Int    int64   `json:"int,omitempty"`
}

type wireRecipe struct {
	Coerce bool          `json:"coerce"`
	NA     *wireSentinel `json:"na,omitempty"`
}

// MarshalRecipe encodes r with c (codec.Default when nil). Sentinels other
// than nil, text, floats, integers and NA fail with ErrUnsupportedSentinel.
func MarshalRecipe(c codec.Codec, r Recipe) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}

	w := wireRecipe{Coerce: r.Coerce}
	if r.HasNA {
		s, err := encodeSentinel(r.NA)
		if err != nil {
			return nil, err
		}
		w.NA = &s
	}

	data, err := c.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal recipe (%s): %w", c.Name(), err)
	}
	return data, nil
}

// UnmarshalRecipe decodes a recipe written by MarshalRecipe with the same
// codec.
func UnmarshalRecipe(c codec.Codec, data []byte) (Recipe, error) {
	if c == nil {
		c = codec.Default
	}

	var w wireRecipe
	if err := c.Unmarshal(data, &w); err != nil {
		return Recipe{}, fmt.Errorf("unmarshal recipe (%s): %w", c.Name(), err)
	}

	r := Recipe{Coerce: w.Coerce}
	if w.NA != nil {
		v, err := decodeSentinel(*w.NA)
		if err != nil {
			return Recipe{}, err
		}
		r.HasNA = true
		r.NA = v
	}
	return r, nil
}

func encodeSentinel(v any) (wireSentinel, error) {
	switch x := v.(type) {
	case nil:
		return wireSentinel{Kind: wireNil}, nil
	case *Missing:
		if x != NA {
			break
		}
		return wireSentinel{Kind: wireNA}, nil
	case string:
		return wireSentinel{Kind: wireString, String: x}, nil
	case float64:
		return encodeFloat(x), nil
	case float32:
		return encodeFloat(float64(x)), nil
	case int:
		return wireSentinel{Kind: wireInt, Int: int64(x)}, nil
	case int32:
		return wireSentinel{Kind: wireInt, Int: int64(x)}, nil
	case int64:
		return wireSentinel{Kind: wireInt, Int: x}, nil
	}
	return wireSentinel{}, fmt.Errorf("%w: %T", ErrUnsupportedSentinel, v)
}

func encodeFloat(f float64) wireSentinel {
	if math.IsNaN(f) {
		return wireSentinel{Kind: wireNaN}
	}
	return wireSentinel{Kind: wireFloat, Float: f}
}

func decodeSentinel(s wireSentinel) (any, error) {
	switch s.Kind {
	case wireNil:
		return nil, nil
	case wireNA:
		return NA, nil
	case wireString:
		return s.String, nil
	case wireNaN:
		return math.NaN(), nil
	case wireFloat:
		return s.Float, nil
	case wireInt:
		return s.Int, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrUnsupportedSentinel, s.Kind)
	}
}
