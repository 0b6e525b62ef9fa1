package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeTagged splits an externally tagged JSON value into its tag and payload.
// A bare string is a tag without payload, an object must have exactly one key.
func DecodeTagged(data []byte) (string, json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("tagged value must have exactly one key, got %d", len(obj))
	}
	for tag, payload := range obj {
		return tag, payload, nil
	}

	return "", nil, nil
}

func encodeTagged(tag string, payload any) ([]byte, error) {
	if payload == nil {
		return json.Marshal(tag)
	}

	return json.Marshal(map[string]any{tag: payload})
}
