package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/order"
	"github.com/sarthaksaklani/enakart/internal/pagination"
	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/seller"
	"github.com/sarthaksaklani/enakart/internal/user"
)

type CreateProductRequest struct {
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	Name              string     `json:"name" validate:"required,min=2"`
	Description       string     `json:"description"`
	Brand             string     `json:"brand"`
	ProductType       string     `json:"product_type" validate:"omitempty,oneof=eyeglasses sunglasses contact_lenses accessories"`
	Gender            string     `json:"gender" validate:"omitempty,oneof=men women unisex kids"`
	FrameShape        string     `json:"frame_shape"`
	FrameMaterial     string     `json:"frame_material"`
	FrameColor        string     `json:"frame_color"`
	Price             float64    `json:"price" validate:"gt=0"`
	OriginalPrice     *float64   `json:"original_price,omitempty" validate:"omitempty,gt=0"`
	ResellerPrice     *float64   `json:"reseller_price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity     int        `json:"stock_quantity" validate:"gte=0"`
	LowStockThreshold int        `json:"low_stock_threshold" validate:"gte=0"`
	Images            []string   `json:"images" validate:"omitempty,dive,url"`
	IsFeatured        bool       `json:"is_featured"`
}

type UpdateProductRequest struct {
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=2"`
	Description       *string    `json:"description,omitempty"`
	Brand             *string    `json:"brand,omitempty"`
	ProductType       *string    `json:"product_type,omitempty" validate:"omitempty,oneof=eyeglasses sunglasses contact_lenses accessories"`
	Gender            *string    `json:"gender,omitempty" validate:"omitempty,oneof=men women unisex kids"`
	FrameShape        *string    `json:"frame_shape,omitempty"`
	FrameMaterial     *string    `json:"frame_material,omitempty"`
	FrameColor        *string    `json:"frame_color,omitempty"`
	Price             *float64   `json:"price,omitempty" validate:"omitempty,gt=0"`
	OriginalPrice     *float64   `json:"original_price,omitempty" validate:"omitempty,gt=0"`
	ResellerPrice     *float64   `json:"reseller_price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity     *int       `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *int       `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	Images            []string   `json:"images,omitempty" validate:"omitempty,dive,url"`
	IsActive          *bool      `json:"is_active,omitempty"`
	IsFeatured        *bool      `json:"is_featured,omitempty"`
}

type UpdateStockRequest struct {
	StockQuantity *int `json:"stock_quantity" validate:"required,gte=0"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered"`
}

type OrderListResponse struct {
	Orders     []order.Order   `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

type SellerHandler struct {
	products product.Service
	orders   order.Service
	reports  seller.Service
	validate *validator.Validate
}

func NewSellerHandler(products product.Service, orders order.Service, reports seller.Service) *SellerHandler {
	return &SellerHandler{products: products, orders: orders, reports: reports, validate: newValidator()}
}

func (h *SellerHandler) RegisterRoutes(router chi.Router) {
	router.Route("/seller", func(r chi.Router) {
		r.Use(RequireRole(user.RoleSeller))

		r.Get("/products", h.handleListProducts)
		r.Post("/products", h.handleCreateProduct)
		r.Get("/products/{id}", h.handleGetProduct)
		r.Put("/products/{id}", h.handleUpdateProduct)
		r.Delete("/products/{id}", h.handleDeleteProduct)

		r.Get("/inventory", h.handleInventory)
		r.Patch("/inventory/{id}", h.handleUpdateStock)

		r.Get("/orders", h.handleListOrders)
		r.Patch("/orders/{id}/status", h.handleUpdateOrderStatus)

		r.Get("/analytics", h.handleAnalytics)
		r.Get("/payments", h.handlePayments)
	})
}

func (h *SellerHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, meta, err := h.products.ListSellerProducts(r.Context(), currentUser(r).ID, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch products")
		return
	}
	respondWithData(w, http.StatusOK, ProductListResponse{Products: products, Pagination: meta})
}

func (h *SellerHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p := &product.Product{
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		Brand:             req.Brand,
		ProductType:       req.ProductType,
		Gender:            req.Gender,
		FrameShape:        req.FrameShape,
		FrameMaterial:     req.FrameMaterial,
		FrameColor:        req.FrameColor,
		Price:             req.Price,
		OriginalPrice:     req.OriginalPrice,
		ResellerPrice:     req.ResellerPrice,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		Images:            req.Images,
		IsActive:          true,
		IsFeatured:        req.IsFeatured,
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	if err := h.products.CreateProduct(r.Context(), currentUser(r).ID, p); err != nil {
		respondWithServiceError(w, r, err, "Failed to create product")
		return
	}
	respondWithMessage(w, http.StatusCreated, p, "Product created successfully")
}

func (h *SellerHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	p, err := h.products.GetSellerProduct(r.Context(), currentUser(r).ID, id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch product")
		return
	}
	respondWithData(w, http.StatusOK, p)
}

func (h *SellerHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	var req UpdateProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p, err := h.products.UpdateProduct(r.Context(), currentUser(r).ID, id, product.Update{
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		Brand:             req.Brand,
		ProductType:       req.ProductType,
		Gender:            req.Gender,
		FrameShape:        req.FrameShape,
		FrameMaterial:     req.FrameMaterial,
		FrameColor:        req.FrameColor,
		Price:             req.Price,
		OriginalPrice:     req.OriginalPrice,
		ResellerPrice:     req.ResellerPrice,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		Images:            req.Images,
		IsActive:          req.IsActive,
		IsFeatured:        req.IsFeatured,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update product")
		return
	}
	respondWithMessage(w, http.StatusOK, p, "Product updated successfully")
}

func (h *SellerHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), currentUser(r).ID, id); err != nil {
		respondWithServiceError(w, r, err, "Failed to delete product")
		return
	}
	respondWithMessage(w, http.StatusOK, nil, "Product deleted successfully")
}

func (h *SellerHandler) handleInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := h.products.Inventory(r.Context(), currentUser(r).ID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch inventory")
		return
	}
	respondWithData(w, http.StatusOK, inv)
}

func (h *SellerHandler) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	var req UpdateStockRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p, err := h.products.UpdateStock(r.Context(), currentUser(r).ID, id, *req.StockQuantity)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update stock")
		return
	}
	respondWithMessage(w, http.StatusOK, p, "Stock updated successfully")
}

func (h *SellerHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := order.Status(r.URL.Query().Get("status"))
	orders, meta, err := h.orders.ListSellerOrders(r.Context(), currentUser(r).ID, status, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch orders")
		return
	}
	respondWithData(w, http.StatusOK, OrderListResponse{Orders: orders, Pagination: meta})
}

func (h *SellerHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}
	var req UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.orders.UpdateStatusBySeller(r.Context(), currentUser(r).ID, id, order.Status(req.Status))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update order status")
		return
	}
	respondWithMessage(w, http.StatusOK, o, "Order status updated successfully")
}

func (h *SellerHandler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.reports.Analytics(r.Context(), currentUser(r).ID, r.URL.Query().Get("period"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch analytics")
		return
	}
	respondWithData(w, http.StatusOK, a)
}

func (h *SellerHandler) handlePayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.reports.Payments(r.Context(), currentUser(r).ID, q.Get("status"), pagination.FromQuery(q))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch payments")
		return
	}
	respondWithData(w, http.StatusOK, page)
}
