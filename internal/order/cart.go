package order

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Line is one requested (product, size, quantity) triple. A nil SizeID
// orders the product's sizeless variant.
type Line struct {
	ProductID int64  `validate:"gt=0"`
	SizeID    *int64 `validate:"omitempty,gt=0"`
	Quantity  int    `validate:"gt=0"`
}

type Cart struct {
	UserID        *int64
	CustomerName  string `validate:"min=3"`
	Email         string `validate:"required,email"`
	Phone         string `validate:"min=11"`
	IsInsideDhaka bool
	AddressLine   string `validate:"min=10"`
	Note          *string
	ReferenceLink *string
	Lines         []Line `validate:"required,min=1,dive"`
	Platform      models.Platform
	PaymentMethod models.PaymentMethod
}

// Validate rejects carts that cannot be placed and fills in the default
// platform. It runs before any transaction is opened.
func (c *Cart) Validate() error {
	c.CustomerName = strings.TrimSpace(c.CustomerName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.AddressLine = strings.TrimSpace(c.AddressLine)
	if c.ReferenceLink != nil && strings.TrimSpace(*c.ReferenceLink) == "" {
		c.ReferenceLink = nil
	}

	if err := validate.Struct(c); err != nil {
		return validationError(err)
	}

	if c.Platform == "" {
		c.Platform = models.PlatformWebsite
	}
	if !c.Platform.Valid() {
		return apperr.Validation("invalid platform %q", c.Platform)
	}
	if !c.PaymentMethod.Valid() {
		return apperr.Validation("invalid payment method %q", c.PaymentMethod)
	}

	return nil
}

// validationError reports the first failing field.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperr.Validation("invalid request: %v", err)
	}

	fe := errs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s is required", field)
	case "min":
		if fe.Kind().String() == "slice" {
			return apperr.Validation("%s must have at least %s entries", field, fe.Param())
		}
		return apperr.Validation("%s must be at least %s characters", field, fe.Param())
	case "gt":
		return apperr.Validation("%s must be greater than %s", field, fe.Param())
	case "email":
		return apperr.Validation("%s must be a valid email", field)
	}
	return apperr.Validation("%s is invalid (%s)", field, fe.Tag())
}

// productIDs returns the distinct product ids in request order.
func (c *Cart) productIDs() []int64 {
	seen := make(map[int64]struct{}, len(c.Lines))
	ids := make([]int64, 0, len(c.Lines))
	for _, l := range c.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
