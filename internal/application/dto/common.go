package dto

// Valores de status del sobre de respuesta.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero o negativos.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Envelope sobre de respuesta {status, results, data}. Results solo se informa en listados.
type Envelope[T any] struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    T      `json:"data"`
}

// ListEnvelope sobre para listados.
func ListEnvelope[T any](items []T) Envelope[[]T] {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Envelope[[]T]{Status: StatusSuccess, Results: &n, Data: items}
}

// DataEnvelope sobre para una sola entidad.
func DataEnvelope[T any](data T) Envelope[T] {
	return Envelope[T]{Status: StatusSuccess, Data: data}
}

// ErrorResponse cuerpo de error HTTP. El cliente lee Message.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
