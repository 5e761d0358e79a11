package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// unwrapList normaliza una respuesta de lista. Acepta {status, results, data: [...]},
// {data: {...}} (un solo elemento), un arreglo desnudo o un objeto desnudo.
func unwrapList[T any](raw []byte) ([]T, error) {
	payload, err := envelopeData(raw)
	if err != nil {
		return nil, err
	}
	out := []T{}
	switch firstByte(payload) {
	case '[':
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
	case '{':
		var one T
		if err := json.Unmarshal(payload, &one); err != nil {
			return nil, fmt.Errorf("decode list item: %w", err)
		}
		out = append(out, one)
	case 'n':
		// data: null
	default:
		return nil, fmt.Errorf("unexpected list shape: %.40q", payload)
	}
	return out, nil
}

// unwrapOne normaliza una respuesta de una entidad: {data: {...}} o el objeto desnudo.
func unwrapOne[T any](raw []byte) (T, error) {
	var out T
	payload, err := envelopeData(raw)
	if err != nil {
		return out, err
	}
	if firstByte(payload) != '{' {
		return out, fmt.Errorf("unexpected object shape: %.40q", payload)
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode object: %w", err)
	}
	return out, nil
}

// envelopeData devuelve el campo data si raw es un sobre; si no, raw tal cual.
func envelopeData(raw []byte) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	if raw[0] != '{' {
		return raw, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if data, ok := env["data"]; ok {
		return bytes.TrimSpace(data), nil
	}
	return raw, nil
}

func firstByte(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
