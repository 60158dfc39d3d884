package checkout

import (
	"strings"

	"github.com/utafrali/storefront/pkg/validator"
)

// Form holds the shipping details collected on the checkout page. Every field
// is required; only presence is checked.
type Form struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country" validate:"required"`
}

// Trimmed returns the form with surrounding whitespace removed from every
// field, so a field holding only spaces counts as empty.
func (f Form) Trimmed() Form {
	return Form{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		Address:   strings.TrimSpace(f.Address),
		City:      strings.TrimSpace(f.City),
		ZipCode:   strings.TrimSpace(f.ZipCode),
		Country:   strings.TrimSpace(f.Country),
	}
}

// Validate returns a *validator.ValidationError listing every empty field.
func (f Form) Validate() error {
	return validator.Validate(f)
}
