package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Params(t *testing.T) {
	q := Query{Page: 2, PageSize: 50, Status: " Confirmado ", TrackingNumber: "  "}
	assert.Equal(t, "limit=50&page=2&status=Confirmado", q.Params().Encode())

	q.TrackingNumber = "TRK-1"
	assert.Equal(t, "limit=50&page=2&status=Confirmado&trackingNumber=TRK-1", q.Params().Encode())
}

func TestQuery_Normalize(t *testing.T) {
	q := Query{Page: -3, PageSize: 75}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)

	assert.Equal(t, 100, Query{PageSize: 100}.Normalize().PageSize)
}

func TestQuery_Cleared(t *testing.T) {
	q := Query{Page: 4, PageSize: 100, Status: "Entregado", TrackingNumber: "TRK"}.Cleared()

	assert.Equal(t, Query{Page: 1, PageSize: 100}, q)
	assert.Equal(t, "limit=100&page=1", q.Params().Encode())
}

func TestQuery_FilterChangesResetPage(t *testing.T) {
	q := Query{Page: 3, PageSize: 50}

	assert.Equal(t, 1, q.WithStatus("Confirmado").Page)
	assert.Equal(t, 1, q.WithSearch("TRK").Page)
	s := q.WithPageSize(100)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 100, s.PageSize)
}

func TestQuery_WithPage(t *testing.T) {
	q := Query{Page: 1, PageSize: 50}

	next, err := q.WithPage(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Page)

	_, err = q.WithPage(4, 3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = q.WithPage(0, 3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	// An empty listing still has page 1.
	_, err = q.WithPage(1, 0)
	assert.NoError(t, err)
}

func TestNewPage(t *testing.T) {
	p := NewPage(nil, 101, Query{Page: 2, PageSize: 50})
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.Page)
	assert.NotNil(t, p.Items)
	assert.Len(t, p.Statuses, 7)

	assert.Equal(t, 1, NewPage(nil, 0, Query{}).TotalPages)
	assert.Equal(t, 2, NewPage(nil, 100, Query{PageSize: 50}).TotalPages)
}
