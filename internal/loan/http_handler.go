package loan

import (
	"net/http"

	"libraryapi/internal/book"
	"libraryapi/internal/httpx"
	"libraryapi/internal/page"
)

const dateLayout = "2006-01-02"

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createRequest struct {
	ISBN     string `json:"isbn" validate:"required,notblank"`
	Customer string `json:"customer" validate:"required,notblank"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type returnRequest struct {
	Returned *bool `json:"returned" validate:"required"`
}

type loanResponse struct {
	ID       int64      `json:"id"`
	ISBN     string     `json:"isbn"`
	Customer string     `json:"customer"`
	Email    string     `json:"email"`
	LoanDate string     `json:"loanDate"`
	Returned bool       `json:"returned"`
	Book     *book.Book `json:"book,omitempty"`
}

func toResponse(l Loan) loanResponse {
	return loanResponse{
		ID:       l.ID,
		ISBN:     l.ISBN(),
		Customer: l.Customer,
		Email:    l.Email,
		LoanDate: l.LoanDate.Format(dateLayout),
		Returned: l.Returned,
		Book:     l.Book,
	}
}

// Create handles POST /api/loans and responds with the new loan id.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, "Corpo da requisição inválido")
		return
	}
	if errs := httpx.ValidateStruct(req); errs != nil {
		httpx.ValidationFailed(w, r, errs)
		return
	}

	l, err := h.service.Checkout(r.Context(), req.ISBN, req.Customer, req.Email)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, l.ID)
}

// Return handles PATCH /api/loans/{id}
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, r, ErrNotFound)
		return
	}

	var req returnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, "Corpo da requisição inválido")
		return
	}
	if errs := httpx.ValidateStruct(req); errs != nil {
		httpx.ValidationFailed(w, r, errs)
		return
	}

	l, err := h.service.SetReturned(r.Context(), id, *req.Returned)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, toResponse(l))
}

// List handles GET /api/loans
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f := Filter{
		ISBN:     query.Get("isbn"),
		Customer: query.Get("customer"),
	}

	result, err := h.service.Search(r.Context(), f, page.FromQuery(query))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, page.Map(result, toResponse))
}

// ListByBook handles GET /api/books/{id}/loans
func (h *HTTPHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, r, book.ErrNotFound)
		return
	}

	result, err := h.service.FindByBook(r.Context(), id, page.FromQuery(r.URL.Query()))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, page.Map(result, toResponse))
}
