package sqlxrepos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
)

func TestJSONB_ValueScan(t *testing.T) {
	entries := jsonb[[]classcount.ClassEntry]{V: []classcount.ClassEntry{
		{Classes: []class.Ref{{ID: "c6", Name: "6"}}, Count: 3},
		{Classes: []class.Ref{{ID: "c9"}}, Count: 2, Comments: "lab"},
	}}

	v, err := entries.Value()
	require.NoError(t, err)
	raw, ok := v.([]byte)
	require.True(t, ok, "value = %T", v)
	assert.JSONEq(t, `[
		{"classes":[{"id":"c6","name":"6"}],"count":3},
		{"classes":[{"id":"c9"}],"count":2,"comments":"lab"}
	]`, string(raw))

	var scanned jsonb[[]classcount.ClassEntry]
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, entries.V, scanned.V)

	t.Run("string source", func(t *testing.T) {
		var rows jsonb[[]employee.ClassPayment]
		require.NoError(t, rows.Scan(`[{"classes":[{"id":"c6"}],"amount":"100.50"}]`))
		if assert.Len(t, rows.V, 1) {
			assert.True(t, decimal.RequireFromString("100.50").Equal(rows.V[0].Amount))
		}
	})

	t.Run("null resets", func(t *testing.T) {
		require.NoError(t, scanned.Scan(nil))
		assert.Nil(t, scanned.V)
	})

	t.Run("unsupported source", func(t *testing.T) {
		var rows jsonb[[]employee.ClassPayment]
		assert.Error(t, rows.Scan(42))
	})

	t.Run("malformed document", func(t *testing.T) {
		var rows jsonb[[]employee.ClassPayment]
		assert.Error(t, rows.Scan([]byte(`[{"classes":`)))
	})
}
