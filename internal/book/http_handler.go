package book

import (
	"net/http"

	"libraryapi/internal/httpx"
	"libraryapi/internal/page"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createRequest struct {
	Title  string `json:"title" validate:"required,notblank"`
	Author string `json:"author" validate:"required,notblank"`
	ISBN   string `json:"isbn" validate:"required,notblank"`
}

// updateRequest accepts isbn for symmetry with create; it is ignored.
type updateRequest struct {
	Title  string `json:"title" validate:"required,notblank"`
	Author string `json:"author" validate:"required,notblank"`
	ISBN   string `json:"isbn"`
}

// Create handles POST /api/books
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

	b, err := h.service.Create(r.Context(), req.Title, req.Author, req.ISBN)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, b)
}

// Get handles GET /api/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, r, ErrNotFound)
		return
	}

	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, b)
}

// Update handles PUT /api/books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, r, ErrNotFound)
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, "Corpo da requisição inválido")
		return
	}
	if errs := httpx.ValidateStruct(req); errs != nil {
		httpx.ValidationFailed(w, r, errs)
		return
	}

	b, err := h.service.Update(r.Context(), id, req.Title, req.Author)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, b)
}

// Delete handles DELETE /api/books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, r, ErrNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// List handles GET /api/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	f := Filter{
		Title:  query.Get("title"),
		Author: query.Get("author"),
		ISBN:   query.Get("isbn"),
	}

	result, err := h.service.Search(r.Context(), f, page.FromQuery(query))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, result)
}
