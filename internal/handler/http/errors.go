package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sarthaksaklani/enakart/internal/address"
	"github.com/sarthaksaklani/enakart/internal/auth"
	"github.com/sarthaksaklani/enakart/internal/cart"
	"github.com/sarthaksaklani/enakart/internal/coupon"
	"github.com/sarthaksaklani/enakart/internal/notification"
	"github.com/sarthaksaklani/enakart/internal/order"
	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/review"
	"github.com/sarthaksaklani/enakart/internal/seller"
	"github.com/sarthaksaklani/enakart/internal/user"
	"github.com/sarthaksaklani/enakart/internal/wishlist"
)

var (
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
)

var badRequestErrors = []error{
	cart.ErrInvalidPrescription,
	cart.ErrInsufficientStock,
	cart.ErrInvalidQuantity,
	order.ErrEmptyOrder,
	order.ErrInsufficientStock,
	order.ErrCouponExhausted,
	order.ErrAddressRequired,
	order.ErrInvalidPaymentMethod,
	order.ErrInvalidQuantity,
	order.ErrReasonRequired,
	order.ErrNotReturnable,
	order.ErrInvalidStatusTransition,
	product.ErrInvalidProduct,
	product.ErrCategoryNotFound,
	review.ErrInvalidRating,
	review.ErrCommentRequired,
	review.ErrAlreadyReviewed,
	wishlist.ErrAlreadyInWishlist,
	notification.ErrInvalidNotification,
	notification.ErrNothingToMark,
	seller.ErrInvalidPeriod,
	auth.ErrInvalidPhone,
	auth.ErrInvalidOTP,
	auth.ErrOTPNotFound,
	user.ErrInvalidRole,
}

var notFoundErrors = []error{
	product.ErrNotFound,
	cart.ErrItemNotFound,
	cart.ErrProductUnavailable,
	address.ErrNotFound,
	coupon.ErrNotFound,
	order.ErrNotFound,
	order.ErrProductUnavailable,
	order.ErrAddressNotFound,
	review.ErrNotFound,
	review.ErrProductNotFound,
	wishlist.ErrNotFound,
	wishlist.ErrProductNotFound,
	user.ErrNotFound,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func mapErrorToStatusCode(err error) int {
	var (
		couponErr *coupon.ValidationError
		statusErr *order.StatusError
	)
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden), errors.Is(err, product.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.As(err, &couponErr), errors.As(err, &statusErr), isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isUnavailableError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var unavailableMarkers = []string{"fetch failed", "network", "connection refused", "no such host"}

// isUnavailableError reports whether err means a backing service could not
// be reached, as opposed to a failed query.
func isUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range unavailableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func clientMessage(err error, status int, fallback string) string {
	switch {
	case status == http.StatusServiceUnavailable:
		return "Service temporarily unavailable"
	case status >= http.StatusInternalServerError:
		return fallback
	case status == http.StatusUnauthorized:
		return "Unauthorized: missing or invalid x-user-id header"
	case status == http.StatusForbidden && errors.Is(err, errForbidden):
		return "Forbidden: insufficient role"
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
