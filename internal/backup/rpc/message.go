package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Payload is the request shape shared by every method. Fields not used by a
// method stay empty.
type Payload struct {
	ID         string          `json:"id,omitempty"`
	Request    json.RawMessage `json:"request,omitempty"`
	Completed  *bool           `json:"completed,omitempty"`
	IsFavorite *bool           `json:"is_favorite,omitempty"`
	Keyword    string          `json:"keyword,omitempty"`
}

// Reply is the response shape shared by every method.
type Reply struct {
	ID    string          `json:"id,omitempty"`
	Item  json.RawMessage `json:"item,omitempty"`
	Items json.RawMessage `json:"items,omitempty"`
	OK    bool            `json:"ok,omitempty"`
	Value *bool           `json:"value,omitempty"`
}

// WithRequest returns p with v encoded as its request body.
func (p Payload) WithRequest(v any) (Payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return p, fmt.Errorf("encode request: %w", err)
	}
	p.Request = b
	return p, nil
}

// DecodeRequest decodes the request body into v.
func (p Payload) DecodeRequest(v any) error {
	if len(p.Request) == 0 {
		return fmt.Errorf("request body is missing")
	}
	return json.Unmarshal(p.Request, v)
}

// ToStruct converts any JSON-encodable value into a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return s, nil
}

// FromStruct decodes s into v.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = new(structpb.Struct)
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	return nil
}
