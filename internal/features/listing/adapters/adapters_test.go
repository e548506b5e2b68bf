package adapters

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"envios-web/internal/core/apiclient"
	listingdomain "envios-web/internal/features/listing/domain"
	ordersdomain "envios-web/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAPIListAdapter_List(t *testing.T) {
	shapes := map[string]string{
		"tuple":  `[[{"id":1,"status":"Confirmado"}],120]`,
		"object": `{"data":[{"id":1,"status":"Confirmado"}],"total":120}`,
	}

	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			var query string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/envios/all", r.URL.Path)
				query = r.URL.RawQuery
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			a := NewAPIListAdapter(apiclient.New(srv.URL, "x_header_access_token", srv.Client()))
			q := listingdomain.Query{Page: 2, PageSize: 50, Status: "Confirmado"}
			orders, total, err := a.List(context.Background(), q.Params())
			require.NoError(t, err)

			assert.Equal(t, "limit=50&page=2&status=Confirmado", query)
			assert.Equal(t, 120, total)
			require.Len(t, orders, 1)
			assert.Equal(t, ordersdomain.StatusConfirmed, orders[0].Status)
		})
	}
}

func TestExcelExporter_Export(t *testing.T) {
	orders := []ordersdomain.Order{
		{ID: "1", TrackingNumber: "TRK-1", Status: ordersdomain.StatusInTransit, TotalDue: 7.1,
			User: &ordersdomain.Customer{FirstName: "Ana", LastName: "Pérez", Email: "ana@test"}},
		{ID: "2", TrackingNumber: "TRK-2", Status: ordersdomain.Status("Devuelto")},
	}
	page := listingdomain.NewPage(ordersdomain.NewViews(orders, "https://tabghalmaca.com"), 2, listingdomain.Query{})

	data, err := NewExcelExporter().Export(page)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Ordenes")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Tracking", rows[0][1])
	assert.Equal(t, "TRK-1", rows[1][1])
	assert.Equal(t, "En Tránsito", rows[1][2])
	assert.Equal(t, "Ana Pérez", rows[1][3])
	assert.Equal(t, "Devuelto", rows[2][2])
}
