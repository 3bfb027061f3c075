package category

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/catalogo/service/internal/logging"
	"github.com/catalogo/service/internal/response"
)

// Handler holds HTTP handlers for category endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new category Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Description string `json:"descricaoCategoria" example:"Periféricos"`
}

// Create godoc
//
//	@Summary		Create category
//	@Tags			categorias
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createRequest	true	"Category description"
//	@Success		201		{object}	response.Envelope{data=Category}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/categorias [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	c, err := h.svc.Create(r.Context(), req.Description)
	if errors.Is(err, ErrDescriptionRequired) {
		response.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("create category failed", "error", err)
		response.ServerError(w, "failed to create category")
		return
	}

	response.Created(w, "category created", c)
}

// List godoc
//
//	@Summary		List categories
//	@Tags			categorias
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]Category}
//	@Failure		500	{object}	response.Envelope
//	@Router			/categorias [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("list categories failed", "error", err)
		response.ServerError(w, "failed to list categories")
		return
	}
	response.OK(w, categories)
}
