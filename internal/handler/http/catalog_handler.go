package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/pagination"
	"github.com/sarthaksaklani/enakart/internal/product"
)

type ProductListResponse struct {
	Products   []product.Product `json:"products"`
	Pagination pagination.Meta   `json:"pagination"`
}

type CatalogHandler struct {
	products product.Service
}

func NewCatalogHandler(products product.Service) *CatalogHandler {
	return &CatalogHandler{products: products}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Get("/categories", h.handleListCategories)
}

// filterFromQuery ignores malformed numeric filters rather than failing.
func filterFromQuery(r *http.Request) product.Filter {
	q := r.URL.Query()
	f := product.Filter{
		CategorySlug: q.Get("category"),
		Brand:        q.Get("brand"),
		Gender:       q.Get("gender"),
		FrameShape:   q.Get("frame_shape"),
		ProductType:  q.Get("product_type"),
		Search:       q.Get("search"),
		InStock:      q.Get("in_stock") == "true",
		Featured:     q.Get("featured") == "true",
		Sort:         product.Sort(q.Get("sort")),
		Page:         pagination.FromQuery(q),
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		f.MaxPrice = &v
	}
	if id, err := uuid.FromString(q.Get("seller_id")); err == nil {
		f.SellerID = &id
	}
	return f
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, meta, err := h.products.ListProducts(r.Context(), filterFromQuery(r), viewerRole(r))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch products")
		return
	}
	respondWithData(w, http.StatusOK, ProductListResponse{Products: products, Pagination: meta})
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	p, err := h.products.GetProduct(r.Context(), id, viewerRole(r))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch product")
		return
	}
	respondWithData(w, http.StatusOK, p)
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch categories")
		return
	}
	respondWithData(w, http.StatusOK, categories)
}
