package dff

import "encoding/json"

// WireCodec (de)serializes a payload to/from bytes for a wrapper's
// serialize path. The wire format itself is out of scope per spec.md §1;
// JSONCodec is the default, minimal concrete instance.
type WireCodec interface {
	// Marshal encodes v to bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes data into sample (a pointer to the concrete Go type
	// to decode into) and returns sample; with a nil sample it decodes into
	// a generic value and returns that.
	Unmarshal(data []byte, sample any) (any, error)
}

// JSONCodec is the default WireCodec, using encoding/json.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, sample any) (any, error) {
	// Without a concrete destination type, decode into a generic value;
	// otherwise decode into sample in place and return it.
	if sample == nil {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := json.Unmarshal(data, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

var _ WireCodec = JSONCodec{}
