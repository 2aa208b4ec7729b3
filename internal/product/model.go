package product

import (
	"sort"
	"time"

	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/user"
)

type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLow        StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Product struct {
	ID                uuid.UUID  `json:"id"`
	SellerID          uuid.UUID  `json:"seller_id"`
	CategoryID        *uuid.UUID `json:"category_id"`
	CategoryName      *string    `json:"category_name,omitempty"`
	CategorySlug      *string    `json:"category_slug,omitempty"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Brand             string     `json:"brand"`
	ProductType       string     `json:"product_type"`
	Gender            string     `json:"gender"`
	FrameShape        string     `json:"frame_shape"`
	FrameMaterial     string     `json:"frame_material"`
	FrameColor        string     `json:"frame_color"`
	Price             float64    `json:"price"`
	OriginalPrice     *float64   `json:"original_price"`
	ResellerPrice     *float64   `json:"reseller_price,omitempty"`
	EffectivePrice    float64    `json:"effective_price"`
	StockQuantity     int        `json:"stock_quantity"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	Images            []string   `json:"images"`
	IsActive          bool       `json:"is_active"`
	IsFeatured        bool       `json:"is_featured"`
	Rating            float64    `json:"rating"`
	ReviewCount       int        `json:"review_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PriceFor returns the unit price charged to a buyer with the given role.
func (p *Product) PriceFor(role user.Role) float64 {
	if role == user.RoleReseller && p.ResellerPrice != nil && *p.ResellerPrice > 0 {
		return *p.ResellerPrice
	}
	return p.Price
}

// Stock classifies the current stock level against the product's threshold.
func (p *Product) Stock() StockStatus {
	switch {
	case p.StockQuantity <= 0:
		return StockOutOfStock
	case p.StockQuantity <= p.LowStockThreshold:
		return StockLow
	default:
		return StockInStock
	}
}

// forViewer prepares a copy of p for a buyer of the given role: resellers
// see their price, everybody else never sees the wholesale price.
func (p Product) forViewer(role user.Role) Product {
	p.EffectivePrice = p.PriceFor(role)
	if role != user.RoleReseller && role != user.RoleSeller {
		p.ResellerPrice = nil
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}

// Update carries a partial seller edit; nil fields are left unchanged.
type Update struct {
	CategoryID        *uuid.UUID
	Name              *string
	Description       *string
	Brand             *string
	ProductType       *string
	Gender            *string
	FrameShape        *string
	FrameMaterial     *string
	FrameColor        *string
	Price             *float64
	OriginalPrice     *float64
	ResellerPrice     *float64
	StockQuantity     *int
	LowStockThreshold *int
	Images            []string
	IsActive          *bool
	IsFeatured        *bool
}

func (u Update) apply(p *Product) {
	if u.CategoryID != nil {
		p.CategoryID = u.CategoryID
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.ProductType != nil {
		p.ProductType = *u.ProductType
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.FrameShape != nil {
		p.FrameShape = *u.FrameShape
	}
	if u.FrameMaterial != nil {
		p.FrameMaterial = *u.FrameMaterial
	}
	if u.FrameColor != nil {
		p.FrameColor = *u.FrameColor
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.OriginalPrice != nil {
		p.OriginalPrice = u.OriginalPrice
	}
	if u.ResellerPrice != nil {
		p.ResellerPrice = u.ResellerPrice
	}
	if u.StockQuantity != nil {
		p.StockQuantity = *u.StockQuantity
	}
	if u.LowStockThreshold != nil {
		p.LowStockThreshold = *u.LowStockThreshold
	}
	if u.Images != nil {
		p.Images = u.Images
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.IsFeatured != nil {
		p.IsFeatured = *u.IsFeatured
	}
}

type InventoryItem struct {
	ProductID         uuid.UUID   `json:"product_id"`
	Name              string      `json:"name"`
	Brand             string      `json:"brand"`
	Price             float64     `json:"price"`
	StockQuantity     int         `json:"stock_quantity"`
	LowStockThreshold int         `json:"low_stock_threshold"`
	StockStatus       StockStatus `json:"stock_status"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type InventorySummary struct {
	TotalProducts  int     `json:"total_products"`
	InStock        int     `json:"in_stock"`
	LowStock       int     `json:"low_stock"`
	OutOfStock     int     `json:"out_of_stock"`
	TotalUnits     int     `json:"total_units"`
	InventoryValue float64 `json:"inventory_value"`
}

type Inventory struct {
	Items   []InventoryItem  `json:"items"`
	Summary InventorySummary `json:"summary"`
}

// BuildInventory classifies products and totals them, lowest stock first.
func BuildInventory(products []Product) Inventory {
	inv := Inventory{Items: make([]InventoryItem, 0, len(products))}
	for i := range products {
		p := &products[i]
		status := p.Stock()
		inv.Items = append(inv.Items, InventoryItem{
			ProductID:         p.ID,
			Name:              p.Name,
			Brand:             p.Brand,
			Price:             p.Price,
			StockQuantity:     p.StockQuantity,
			LowStockThreshold: p.LowStockThreshold,
			StockStatus:       status,
			UpdatedAt:         p.UpdatedAt,
		})

		inv.Summary.TotalProducts++
		inv.Summary.TotalUnits += p.StockQuantity
		inv.Summary.InventoryValue += float64(p.StockQuantity) * p.Price
		switch status {
		case StockOutOfStock:
			inv.Summary.OutOfStock++
		case StockLow:
			inv.Summary.LowStock++
		default:
			inv.Summary.InStock++
		}
	}

	sort.SliceStable(inv.Items, func(i, j int) bool {
		return inv.Items[i].StockQuantity < inv.Items[j].StockQuantity
	})
	return inv
}
