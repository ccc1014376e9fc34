// Package codec centralizes encoding of descriptor reconstruction recipes.
//
// Encoded recipes carry no codec marker of their own; whoever persists them
// must record which codec was used and select it again with ByName.
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Default is the codec used when none is supplied.
var Default Codec = GoJSON{}
