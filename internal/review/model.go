package review

import (
	"math"
	"time"

	"github.com/gofrs/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID                 uuid.UUID  `json:"id"`
	ProductID          uuid.UUID  `json:"product_id"`
	UserID             uuid.UUID  `json:"user_id"`
	OrderID            *uuid.UUID `json:"order_id"`
	ReviewerName       *string    `json:"reviewer_name"`
	Rating             int        `json:"rating"`
	Title              string     `json:"title"`
	Comment            string     `json:"comment"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase"`
	IsApproved         bool       `json:"is_approved"`
	HelpfulCount       int        `json:"helpful_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Stats summarises the approved reviews of a product.
type Stats struct {
	AverageRating      float64     `json:"average_rating"`
	TotalReviews       int         `json:"total_reviews"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// BuildStats computes the average (one decimal) and the per-star counts.
// Every star from 1 to 5 is present in the distribution.
func BuildStats(reviews []Review) Stats {
	st := Stats{RatingDistribution: make(map[int]int, MaxRating)}
	for r := MinRating; r <= MaxRating; r++ {
		st.RatingDistribution[r] = 0
	}

	sum := 0
	for _, rv := range reviews {
		if rv.Rating < MinRating || rv.Rating > MaxRating {
			continue
		}
		st.RatingDistribution[rv.Rating]++
		st.TotalReviews++
		sum += rv.Rating
	}
	if st.TotalReviews > 0 {
		st.AverageRating = math.Round(float64(sum)/float64(st.TotalReviews)*10) / 10
	}
	return st
}

type ProductReviews struct {
	Reviews []Review `json:"reviews"`
	Stats   Stats    `json:"stats"`
}
