package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// UnmarshalStrict decodes data into a BusinessDefinition, rejecting
// unknown fields and validating the result.
func UnmarshalStrict(data []byte) (*BusinessDefinition, error) {
	return DecodeStrict(bytes.NewReader(data))
}

// DecodeStrict decodes a BusinessDefinition from r, rejecting unknown
// fields and validating the result.
func DecodeStrict(r io.Reader) (*BusinessDefinition, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var d BusinessDefinition
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return &d, nil
}
