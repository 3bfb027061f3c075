package product

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/catalogo/service/internal/logging"
	"github.com/catalogo/service/internal/response"
	"github.com/catalogo/service/internal/upload"
)

// Form field names.
const (
	fieldCategoryID = "idCategoria"
	fieldName       = "nomeProduto"
	fieldPrice      = "valorProduto"
)

// Handler holds HTTP handlers for product endpoints.
type Handler struct {
	svc      *Service
	receiver *upload.Receiver
}

// NewHandler creates a new product Handler.
func NewHandler(svc *Service, receiver *upload.Receiver) *Handler {
	return &Handler{svc: svc, receiver: receiver}
}

// Routes mounts the product endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{idProduto}", h.Get)
	r.Put("/{idProduto}", h.Update)
	r.Delete("/{idProduto}", h.Delete)
}

// Create godoc
//
//	@Summary		Create product
//	@Description	Creates a product with its image. The image is removed again if the product cannot be stored.
//	@Tags			produtos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			idCategoria		formData	int		true	"Category id"
//	@Param			nomeProduto		formData	string	true	"Product name"
//	@Param			valorProduto	formData	number	true	"Price"
//	@Param			vinculoImagem	formData	file	true	"Image (jpeg or png, up to 10 MiB)"
//	@Success		201				{object}	response.Envelope{data=Product}
//	@Failure		400				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/produtos [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	image, ok := h.receiveImage(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Create(r.Context(), formFields(r), image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, "product created", p)
}

// List godoc
//
//	@Summary	List products
//	@Tags		produtos
//	@Produce	json
//	@Success	200	{object}	response.Envelope{data=[]Product}
//	@Failure	500	{object}	response.Envelope
//	@Router		/produtos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, products)
}

// Get godoc
//
//	@Summary	Get product
//	@Tags		produtos
//	@Produce	json
//	@Param		idProduto	path		int	true	"Product id"
//	@Success	200			{object}	response.Envelope{data=Product}
//	@Failure	400			{object}	response.Envelope
//	@Failure	404			{object}	response.Envelope
//	@Failure	500			{object}	response.Envelope
//	@Router		/produtos/{idProduto} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, p)
}

// Update godoc
//
//	@Summary		Update product
//	@Description	Partially updates a product: fields that are not sent keep their stored values. A new image replaces the previous one, which is removed only after the update succeeds. The body must be multipart/form-data even when no field is sent.
//	@Tags			produtos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			idProduto		path		int		true	"Product id"
//	@Param			idCategoria		formData	int		false	"Category id"
//	@Param			nomeProduto		formData	string	false	"Product name"
//	@Param			valorProduto	formData	number	false	"Price"
//	@Param			vinculoImagem	formData	file	false	"Replacement image"
//	@Success		200				{object}	response.Envelope{data=Product}
//	@Failure		400				{object}	response.Envelope
//	@Failure		404				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/produtos/{idProduto} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	image, ok := h.receiveImage(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Update(r.Context(), id, formFields(r), image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary	Delete product
//	@Tags		produtos
//	@Produce	json
//	@Param		idProduto	path		int	true	"Product id"
//	@Success	200			{object}	response.Envelope
//	@Failure	400			{object}	response.Envelope
//	@Failure	404			{object}	response.Envelope
//	@Failure	500			{object}	response.Envelope
//	@Router		/produtos/{idProduto} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Message(w, "product deleted")
}

// receiveImage runs the upload receiver and writes the response itself when
// the upload is rejected. It returns the stored image name, empty when the
// request carried no image.
func (h *Handler) receiveImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	file, err := h.receiver.Receive(w, r)
	if err != nil {
		if upload.IsRejection(err) {
			response.BadRequest(w, err.Error())
			return "", false
		}
		logging.FromContext(r.Context()).Error("store uploaded image failed", "error", err)
		response.ServerError(w, "failed to store image")
		return "", false
	}
	if file == nil {
		return "", true
	}
	return file.Name, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *ValidationError
	var storageErr *StorageError

	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, validationErr.Message)
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "product not found")
	case errors.As(err, &storageErr):
		logging.FromContext(r.Context()).Error("product storage failure",
			"op", storageErr.Op,
			"image_removed", storageErr.ImageRemoved,
			"unknown_category", errors.Is(err, ErrUnknownCategory),
			"error", storageErr.Err,
		)
		msg := storageErr.Op + " failed"
		if storageErr.ImageRemoved {
			msg += "; the uploaded image was removed"
		}
		response.ServerError(w, msg)
	default:
		logging.FromContext(r.Context()).Error("product request failed", "error", err)
		response.InternalError(w)
	}
}

// formFields extracts the product fields present in the parsed multipart form.
func formFields(r *http.Request) Fields {
	var f Fields
	if r.MultipartForm == nil {
		return f
	}
	get := func(key string) *string {
		if v, ok := r.MultipartForm.Value[key]; ok && len(v) > 0 {
			return &v[0]
		}
		return nil
	}
	f.CategoryID = get(fieldCategoryID)
	f.Name = get(fieldName)
	f.Price = get(fieldPrice)
	return f
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "idProduto"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid product id")
		return 0, false
	}
	return id, true
}
