package seller

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/gofrs/uuid"
)

var ErrInvalidPeriod = errors.New("period must be one of 7d, 30d, 90d, 1y")

const DefaultPeriod = "30d"

var periods = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

// ParsePeriod maps a period name to its length. Empty means DefaultPeriod.
func ParsePeriod(s string) (string, time.Duration, error) {
	if s == "" {
		s = DefaultPeriod
	}
	d, ok := periods[s]
	if !ok {
		return "", 0, ErrInvalidPeriod
	}
	return s, d, nil
}

// SaleLine is one of the seller's order items with its order's status.
type SaleLine struct {
	OrderID     uuid.UUID `db:"order_id"`
	OrderStatus string    `db:"order_status"`
	ProductID   uuid.UUID `db:"product_id"`
	ProductName string    `db:"product_name"`
	Quantity    int       `db:"quantity"`
	TotalPrice  float64   `db:"total_price"`
	CreatedAt   time.Time `db:"created_at"`
}

type TopProduct struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitsSold   int       `json:"units_sold"`
	Revenue     float64   `json:"revenue"`
}

type DayRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type Analytics struct {
	Period            string         `json:"period"`
	TotalRevenue      float64        `json:"total_revenue"`
	TotalOrders       int            `json:"total_orders"`
	TotalUnits        int            `json:"total_units"`
	AverageOrderValue float64        `json:"average_order_value"`
	RevenueGrowth     float64        `json:"revenue_growth"`
	OrdersGrowth      float64        `json:"orders_growth"`
	TopProducts       []TopProduct   `json:"top_products"`
	RevenueByDay      []DayRevenue   `json:"revenue_by_day"`
	StatusBreakdown   map[string]int `json:"status_breakdown"`
	TotalProducts     int            `json:"total_products"`
	LowStockProducts  int            `json:"low_stock_products"`
}

const topProductsLimit = 5

const cancelledStatus = "cancelled"

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }

// Growth is the percentage change from previous to current. With no previous
// value it is 100 when there is any current value and 0 otherwise.
func Growth(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1((current - previous) / previous * 100)
}

type totals struct {
	revenue float64
	orders  int
	units   int
}

func sum(lines []SaleLine) totals {
	var t totals
	seen := make(map[uuid.UUID]bool)
	for _, l := range lines {
		if l.OrderStatus == cancelledStatus {
			continue
		}
		t.revenue += l.TotalPrice
		t.units += l.Quantity
		if !seen[l.OrderID] {
			seen[l.OrderID] = true
			t.orders++
		}
	}
	t.revenue = round2(t.revenue)
	return t
}

// BuildAnalytics aggregates the current and previous periods' sale lines.
// Cancelled orders count only in the status breakdown.
func BuildAnalytics(period string, current, previous []SaleLine) Analytics {
	cur := sum(current)
	prev := sum(previous)

	a := Analytics{
		Period:          period,
		TotalRevenue:    cur.revenue,
		TotalOrders:     cur.orders,
		TotalUnits:      cur.units,
		RevenueGrowth:   Growth(cur.revenue, prev.revenue),
		OrdersGrowth:    Growth(float64(cur.orders), float64(prev.orders)),
		StatusBreakdown: make(map[string]int),
		TopProducts:     make([]TopProduct, 0, topProductsLimit),
		RevenueByDay:    make([]DayRevenue, 0),
	}
	if cur.orders > 0 {
		a.AverageOrderValue = round2(cur.revenue / float64(cur.orders))
	}

	byProduct := make(map[uuid.UUID]*TopProduct)
	byDay := make(map[string]*DayRevenue)
	dayOrders := make(map[string]map[uuid.UUID]bool)
	statusSeen := make(map[uuid.UUID]bool)

	for _, l := range current {
		if !statusSeen[l.OrderID] {
			statusSeen[l.OrderID] = true
			a.StatusBreakdown[l.OrderStatus]++
		}
		if l.OrderStatus == cancelledStatus {
			continue
		}

		tp, ok := byProduct[l.ProductID]
		if !ok {
			tp = &TopProduct{ProductID: l.ProductID, ProductName: l.ProductName}
			byProduct[l.ProductID] = tp
		}
		tp.UnitsSold += l.Quantity
		tp.Revenue += l.TotalPrice

		day := l.CreatedAt.UTC().Format(time.DateOnly)
		dr, ok := byDay[day]
		if !ok {
			dr = &DayRevenue{Date: day}
			byDay[day] = dr
			dayOrders[day] = make(map[uuid.UUID]bool)
		}
		dr.Revenue += l.TotalPrice
		if !dayOrders[day][l.OrderID] {
			dayOrders[day][l.OrderID] = true
			dr.Orders++
		}
	}

	products := make([]TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		tp.Revenue = round2(tp.Revenue)
		products = append(products, *tp)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Revenue != products[j].Revenue {
			return products[i].Revenue > products[j].Revenue
		}
		if products[i].UnitsSold != products[j].UnitsSold {
			return products[i].UnitsSold > products[j].UnitsSold
		}
		return products[i].ProductName < products[j].ProductName
	})
	if len(products) > topProductsLimit {
		products = products[:topProductsLimit]
	}
	a.TopProducts = append(a.TopProducts, products...)

	for _, dr := range byDay {
		dr.Revenue = round2(dr.Revenue)
		a.RevenueByDay = append(a.RevenueByDay, *dr)
	}
	sort.Slice(a.RevenueByDay, func(i, j int) bool {
		return a.RevenueByDay[i].Date < a.RevenueByDay[j].Date
	})

	return a
}

// PaymentRow is the seller's share of one order.
type PaymentRow struct {
	OrderID       uuid.UUID `db:"order_id" json:"order_id"`
	OrderNumber   string    `db:"order_number" json:"order_number"`
	OrderStatus   string    `db:"order_status" json:"order_status"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	RefundStatus  *string   `db:"refund_status" json:"refund_status"`
	Amount        float64   `db:"amount" json:"amount"`
	Items         int       `db:"items" json:"items"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PaymentGroup is the seller's order amount summed per payment state.
type PaymentGroup struct {
	OrderStatus   string  `db:"order_status"`
	PaymentStatus string  `db:"payment_status"`
	Refunding     bool    `db:"refunding"`
	Amount        float64 `db:"amount"`
}

type PaymentSummary struct {
	GrossSales     float64 `json:"gross_sales"`
	Commission     float64 `json:"commission"`
	CommissionRate float64 `json:"commission_rate"`
	NetEarnings    float64 `json:"net_earnings"`
	PendingAmount  float64 `json:"pending_amount"`
	RefundedAmount float64 `json:"refunded_amount"`
}

// SummarizePayments applies the commission rate to paid sales. Refunded or
// refunding amounts are reported apart and earn nothing; pending amounts of
// live orders are shown as pending.
func SummarizePayments(groups []PaymentGroup, rate float64) PaymentSummary {
	s := PaymentSummary{CommissionRate: rate}
	for _, g := range groups {
		switch {
		case g.PaymentStatus == "refunded" || g.Refunding:
			s.RefundedAmount += g.Amount
		case g.PaymentStatus == "paid":
			s.GrossSales += g.Amount
		case g.PaymentStatus == "pending" && g.OrderStatus != cancelledStatus:
			s.PendingAmount += g.Amount
		}
	}
	s.GrossSales = round2(s.GrossSales)
	s.Commission = round2(s.GrossSales * rate)
	s.NetEarnings = round2(s.GrossSales - s.Commission)
	s.PendingAmount = round2(s.PendingAmount)
	s.RefundedAmount = round2(s.RefundedAmount)
	return s
}
