package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType discriminates request envelopes.
type MessageType string

const (
	TypeInit MessageType = "init"
	TypeNode MessageType = "node"
)

// Envelope is a typed request. Data is only meaningful for TypeNode.
type Envelope struct {
	Type MessageType
	Data string
}

// InitEnvelope announces a new commit session.
func InitEnvelope() Envelope {
	return Envelope{Type: TypeInit}
}

// NodeEnvelope carries a node descriptor.
func NodeEnvelope(descriptor string) Envelope {
	return Envelope{Type: TypeNode, Data: descriptor}
}

type initWire struct {
	Type MessageType `json:"type"`
}

type nodeWire struct {
	Type MessageType `json:"type"`
	Data string      `json:"data"`
}

type envelopeWire struct {
	Type MessageType `json:"type"`
	Data *string     `json:"data"`
}

// Encode renders env as a compact JSON object. Node envelopes always carry
// "data", even when empty. Invalid UTF-8 in the descriptor is replaced with
// U+FFFD by the JSON encoder.
func Encode(env Envelope) ([]byte, error) {
	var wire any
	switch env.Type {
	case TypeInit:
		wire = initWire{Type: env.Type}
	case TypeNode:
		wire = nodeWire{Type: env.Type, Data: env.Data}
	default:
		return nil, fmt.Errorf("encode envelope: unknown type %q", env.Type)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses an envelope produced by Encode.
func Decode(data []byte) (Envelope, error) {
	var wire envelopeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	switch wire.Type {
	case TypeInit:
		if wire.Data != nil {
			return Envelope{}, errors.New("decode envelope: init carries data")
		}
		return InitEnvelope(), nil
	case TypeNode:
		if wire.Data == nil {
			return Envelope{}, errors.New("decode envelope: node missing data")
		}
		return NodeEnvelope(*wire.Data), nil
	case "":
		return Envelope{}, errors.New("decode envelope: missing type")
	default:
		return Envelope{}, fmt.Errorf("decode envelope: unknown type %q", wire.Type)
	}
}
