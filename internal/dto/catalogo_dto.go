package dto

// CatalogoFilter are the query parameters of the catalog PDF export. WA and
// IG override the configured footer links for this document.
type CatalogoFilter struct {
	Q          string `form:"q"`
	Tecnica    string `form:"tecnica"`
	MostrarSKU bool   `form:"sku"`
	MarcaAgua  bool   `form:"marca_agua"`
	Contacto   *bool  `form:"contacto"`
	WA         string `form:"wa"`
	IG         string `form:"ig"`
}

// EnviarCatalogoRequest queues the catalog PDF for delivery by email.
type EnviarCatalogoRequest struct {
	Email      string `json:"email"       validate:"required,email"`
	Asunto     string `json:"asunto"      validate:"max=200"`
	Mensaje    string `json:"mensaje"     validate:"max=2000"`
	Q          string `json:"q"`
	Tecnica    string `json:"tecnica"`
	MostrarSKU bool   `json:"sku"`
	MarcaAgua  bool   `json:"marca_agua"`
}

type EnviarCatalogoResponse struct {
	Encolado bool   `json:"encolado"`
	Mensaje  string `json:"mensaje"`
}
