package apiclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int `json:"id"`
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		ids   []int
		total int
	}{
		{"tuple", `[[{"id":1},{"id":2}],40]`, []int{1, 2}, 40},
		{"tuple zero total", `[[{"id":1}],0]`, []int{1}, 1},
		{"data object", `{"data":[{"id":3}],"total":12}`, []int{3}, 12},
		{"orders object", `{"orders":[{"id":4},{"id":5}],"total":2}`, []int{4, 5}, 2},
		{"object without total", `{"data":[{"id":6}]}`, []int{6}, 1},
		{"bare array", `[{"id":7},{"id":8},{"id":9}]`, []int{7, 8, 9}, 3},
		{"bare array of two", `[{"id":1},{"id":2}]`, []int{1, 2}, 2},
		{"empty array", `[]`, []int{}, 0},
		{"null", `null`, []int{}, 0},
		{"unknown object", `{"message":"ok"}`, []int{}, 0},
		{"scalar", `42`, []int{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := DecodeList[item](json.RawMessage(tt.raw))
			require.NoError(t, err)

			ids := make([]int, 0, len(items))
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestDecodeList_BadItems(t *testing.T) {
	_, _, err := DecodeList[item](json.RawMessage(`[{"id":"not-a-number"}]`))
	assert.Error(t, err)
}
