package handler

import (
	"errors"
	"net/http"

	"github.com/pesokrava/catalog/internal/delivery/http/request"
	"github.com/pesokrava/catalog/internal/delivery/http/response"
	"github.com/pesokrava/catalog/internal/domain"
	"github.com/pesokrava/catalog/internal/pkg/logger"
	"github.com/pesokrava/catalog/internal/usecase/catalog"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *catalog.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *catalog.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	Status        domain.Status `json:"status"`
	StockQuantity int           `json:"stock_quantity"`
}

// UpdateProductRequest represents the request body for updating a product.
// All fields are optional; omitted fields keep their current values.
type UpdateProductRequest struct {
	Name          *string        `json:"name"`
	Description   *string        `json:"description"`
	Price         *float64       `json:"price"`
	Status        *domain.Status `json:"status"`
	StockQuantity *int           `json:"stock_quantity"`
}

// Create handles POST /products
// @Summary Create a new product
// @Description Create a new product; status and stock quantity must agree
// @Tags Products
// @Accept json
// @Produce json
// @Param product body CreateProductRequest true "Product fields"
// @Success 201 {object} domain.Product "Created product"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 422 {object} map[string]interface{} "Validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	product := &domain.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Status:        req.Status,
		StockQuantity: req.StockQuantity,
	}

	if err := h.service.Create(r.Context(), product); err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// List handles GET /products
// @Summary List all products
// @Description List every product in insertion order; listing counts as viewing each product
// @Tags Products
// @Accept json
// @Produce json
// @Success 200 {array} domain.Product "All products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}

	response.JSON(w, http.StatusOK, products)
}

// GetByID handles GET /products/{id}
// @Summary Get a product by ID
// @Description Get one product and record the view
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product "Product"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetInt64Param(r, "id")
	if err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid product ID.")
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// Update handles PUT /products/{id}
// @Summary Update a product
// @Description Partially update a product; omitted fields keep their values
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body UpdateProductRequest true "Fields to update"
// @Success 200 {object} domain.Product "Updated product"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 422 {object} map[string]interface{} "Validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetInt64Param(r, "id")
	if err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid product ID.")
		return
	}

	var req UpdateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	patch := domain.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Status:        req.Status,
		StockQuantity: req.StockQuantity,
	}

	product, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// Delete handles DELETE /products/{id}
// @Summary Delete a product
// @Description Delete a product and its view log, returning the deleted record
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product "Deleted product"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetInt64Param(r, "id")
	if err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid product ID.")
		return
	}

	product, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// ViewReport handles GET /products/{id}/views
// @Summary Get the view report for a product
// @Description Return the product, its view count and every recorded view; does not record a view itself
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.ViewReport "View report"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/views [get]
func (h *ProductHandler) ViewReport(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetInt64Param(r, "id")
	if err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid product ID.")
		return
	}

	report, err := h.service.ViewReport(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, report)
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationFailed(w, ve.Details())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Product")
	default:
		h.logger.Error("Internal error in product handler", err)
		response.InternalError(w)
	}
}
