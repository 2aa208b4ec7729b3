package user

import (
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleReseller Role = "reseller"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleReseller:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// User is a marketplace account identified by phone number.
type User struct {
	ID           uuid.UUID `json:"id"`
	Phone        string    `json:"phone"`
	Email        *string   `json:"email"`
	FullName     *string   `json:"full_name"`
	Role         Role      `json:"role"`
	BusinessName *string   `json:"business_name"`
	GSTNumber    *string   `json:"gst_number"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
