package domain

import (
	"encoding/json"
	"testing"

	"envios-web/internal/core/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireKeys(t *testing.T, r Request) map[string]any {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestQuote_Request_EnvelopeNeverSendsDimensions(t *testing.T) {
	for _, dims := range []*Dimensions{nil, {Width: 10, Height: 20, Length: 30}} {
		q := Quote{
			DistanceKm: 50, WeightKg: 1, DeclaredValueUsd: 20,
			ArticleType: ArticleDocuments, PackageVariant: VariantEnvelope, ServiceTier: TierNormal,
			Dimensions: dims,
		}
		q.Normalize()
		require.NoError(t, validation.Struct(q))

		keys := wireKeys(t, q.Request())
		assert.NotContains(t, keys, "ancho")
		assert.NotContains(t, keys, "alto")
		assert.NotContains(t, keys, "largo")
		assert.Equal(t, true, keys["esSobre"])
		assert.Equal(t, 50.0, keys["distancia"])
		assert.Equal(t, "Documentos", keys["tipoArticulo"])
	}
}

func TestQuote_Request_PackageAlwaysSendsDimensions(t *testing.T) {
	q := Quote{
		DistanceKm: 120, WeightKg: 4, DeclaredValueUsd: 100,
		ArticleType: ArticleMerchandise, PackageVariant: VariantPackage, ServiceTier: TierExpress,
		Dimensions: &Dimensions{Width: 1, Height: 15, Length: 40},
	}
	q.Normalize()
	require.NoError(t, validation.Struct(q))

	keys := wireKeys(t, q.Request())
	assert.Equal(t, 1.0, keys["ancho"])
	assert.Equal(t, 15.0, keys["alto"])
	assert.Equal(t, 40.0, keys["largo"])
	assert.Equal(t, false, keys["esSobre"])
	assert.Equal(t, "Express", keys["tipoServicio"])
}

func TestQuote_Validation(t *testing.T) {
	fields := func(q Quote) map[string]string {
		q.Normalize()
		errs, ok := validation.As(validation.Struct(q))
		if !ok {
			return nil
		}
		out := map[string]string{}
		for _, fe := range errs {
			out[fe.Field] = fe.Message
		}
		return out
	}

	valid := Quote{DistanceKm: 1, WeightKg: 0.5, DeclaredValueUsd: 1}
	assert.Nil(t, fields(valid))

	got := fields(Quote{DistanceKm: 0, WeightKg: 0, DeclaredValueUsd: 0.5})
	assert.Equal(t, "debe ser mayor que 0", got["distanceKm"])
	assert.Equal(t, "debe ser mayor que 0", got["weightKg"])
	assert.Equal(t, "debe ser mayor o igual a 1", got["declaredValueUsd"])

	got = fields(Quote{DistanceKm: 1, WeightKg: 1, DeclaredValueUsd: 1, PackageVariant: VariantPackage})
	assert.Equal(t, "es obligatorio", got["dimensions"])

	got = fields(Quote{
		DistanceKm: 1, WeightKg: 1, DeclaredValueUsd: 1, PackageVariant: VariantPackage,
		Dimensions: &Dimensions{Width: 0, Height: 1, Length: 0.5},
	})
	assert.Equal(t, "debe ser mayor o igual a 1", got["dimensions.width"])
	assert.Equal(t, "debe ser mayor o igual a 1", got["dimensions.length"])
	assert.NotContains(t, got, "dimensions.height")

	got = fields(Quote{DistanceKm: 1, WeightKg: 1, DeclaredValueUsd: 1, ServiceTier: "Overnight"})
	assert.Equal(t, "debe ser uno de: Normal, Express", got["serviceTier"])
}

func TestQuote_NormalizeDefaults(t *testing.T) {
	q := Quote{}
	q.Normalize()

	assert.Equal(t, ArticleDocuments, q.ArticleType)
	assert.Equal(t, VariantEnvelope, q.PackageVariant)
	assert.Equal(t, TierNormal, q.ServiceTier)
}
