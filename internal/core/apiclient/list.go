package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeList normalizes the list shapes the API is known to return:
//
//	[[...items], total]
//	{"data": [...items], "total": n}
//	{"orders": [...items], "total": n}
//	[...items]
//
// Anything else yields an empty list with total 0. A missing or zero total falls back to len(items).
func DecodeList[T any](raw json.RawMessage) ([]T, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, 0, nil
	}

	switch trimmed[0] {
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(trimmed, &parts); err != nil {
			return nil, 0, fmt.Errorf("failed to decode list: %w", err)
		}
		if len(parts) == 2 && isArray(parts[0]) {
			items, err := decodeItems[T](parts[0])
			if err != nil {
				return nil, 0, err
			}
			var total int
			_ = json.Unmarshal(parts[1], &total)
			return items, orLen(total, len(items)), nil
		}
		items, err := decodeItems[T](trimmed)
		if err != nil {
			return nil, 0, err
		}
		return items, len(items), nil

	case '{':
		var obj struct {
			Data   json.RawMessage `json:"data"`
			Orders json.RawMessage `json:"orders"`
			Total  int             `json:"total"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, 0, fmt.Errorf("failed to decode list envelope: %w", err)
		}
		for _, candidate := range []json.RawMessage{obj.Data, obj.Orders} {
			if isArray(candidate) {
				items, err := decodeItems[T](candidate)
				if err != nil {
					return nil, 0, err
				}
				return items, orLen(obj.Total, len(items)), nil
			}
		}
	}

	return []T{}, 0, nil
}

func decodeItems[T any](raw json.RawMessage) ([]T, error) {
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode list items: %w", err)
	}
	return items, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func orLen(total, n int) int {
	if total > 0 {
		return total
	}
	return n
}
