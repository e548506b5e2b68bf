package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotices_JSON(t *testing.T) {
	data, err := json.Marshal([]Notice{
		Loading("compress", "Procesando imagen..."),
		Dismiss("compress"),
		Success("Listo"),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"level":"loading","message":"Procesando imagen...","id":"compress"},
		{"level":"dismiss","id":"compress"},
		{"level":"success","message":"Listo"}
	]`, string(data))
}
