package domain

// ArticleType is what is being shipped.
type ArticleType string

const (
	ArticleDocuments   ArticleType = "Documentos"
	ArticleMerchandise ArticleType = "Mercancia"
)

// PackageVariant selects envelope or dimensioned package pricing.
type PackageVariant string

const (
	VariantEnvelope PackageVariant = "Sobre"
	VariantPackage  PackageVariant = "Paquete"
)

// ServiceTier is the shipping speed class.
type ServiceTier string

const (
	TierNormal  ServiceTier = "Normal"
	TierExpress ServiceTier = "Express"
)

// Dimensions of a package in centimeters.
type Dimensions struct {
	Width  float64 `json:"width" validate:"gte=1"`
	Height float64 `json:"height" validate:"gte=1"`
	Length float64 `json:"length" validate:"gte=1"`
}

// Quote holds the parameters of a shipping cost calculation.
type Quote struct {
	DistanceKm       float64        `json:"distanceKm" validate:"gt=0"`
	WeightKg         float64        `json:"weightKg" validate:"gt=0"`
	DeclaredValueUsd float64        `json:"declaredValueUsd" validate:"gte=1"`
	ArticleType      ArticleType    `json:"articleType" validate:"required,oneof=Documentos Mercancia"`
	PackageVariant   PackageVariant `json:"packageVariant" validate:"required,oneof=Sobre Paquete"`
	ServiceTier      ServiceTier    `json:"serviceTier" validate:"required,oneof=Normal Express"`
	Dimensions       *Dimensions    `json:"dimensions,omitempty" validate:"required_if=PackageVariant Paquete"`
}

// Normalize fills defaults and drops dimensions from envelopes.
func (q *Quote) Normalize() {
	if q.ArticleType == "" {
		q.ArticleType = ArticleDocuments
	}
	if q.PackageVariant == "" {
		q.PackageVariant = VariantEnvelope
	}
	if q.ServiceTier == "" {
		q.ServiceTier = TierNormal
	}
	if q.PackageVariant == VariantEnvelope {
		q.Dimensions = nil
	}
}

// Request is the wire body of the quote endpoint.
type Request struct {
	Distancia      float64  `json:"distancia"`
	Peso           float64  `json:"peso"`
	TipoArticulo   string   `json:"tipoArticulo"`
	ValorDeclarado float64  `json:"valorDeclarado"`
	EsSobre        bool     `json:"esSobre"`
	TipoServicio   string   `json:"tipoServicio"`
	Ancho          *float64 `json:"ancho,omitempty"`
	Alto           *float64 `json:"alto,omitempty"`
	Largo          *float64 `json:"largo,omitempty"`
}

// Request shapes the wire body. Envelopes never carry dimensions; packages always carry all three.
func (q Quote) Request() Request {
	r := Request{
		Distancia:      q.DistanceKm,
		Peso:           q.WeightKg,
		TipoArticulo:   string(q.ArticleType),
		ValorDeclarado: q.DeclaredValueUsd,
		EsSobre:        q.PackageVariant != VariantPackage,
		TipoServicio:   string(q.ServiceTier),
	}
	if q.PackageVariant == VariantPackage && q.Dimensions != nil {
		w, h, l := q.Dimensions.Width, q.Dimensions.Height, q.Dimensions.Length
		r.Ancho, r.Alto, r.Largo = &w, &h, &l
	}
	return r
}
