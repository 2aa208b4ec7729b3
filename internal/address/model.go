package address

import (
	"time"

	"github.com/gofrs/uuid"
)

type Address struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	AddressType  string    `json:"address_type"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Update carries a partial edit; nil fields are left unchanged.
type Update struct {
	FullName     *string
	Phone        *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	AddressType  *string
	IsDefault    *bool
}

func (u Update) apply(a *Address) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.FullName, u.FullName)
	set(&a.Phone, u.Phone)
	set(&a.AddressLine1, u.AddressLine1)
	set(&a.AddressLine2, u.AddressLine2)
	set(&a.City, u.City)
	set(&a.State, u.State)
	set(&a.PostalCode, u.PostalCode)
	set(&a.Country, u.Country)
	set(&a.AddressType, u.AddressType)
	if u.IsDefault != nil {
		a.IsDefault = *u.IsDefault
	}
}
