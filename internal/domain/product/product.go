// Package product manages the products maintained from the admin page.
// They are stored under their own key and are independent of the static
// storefront catalog.
package product

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/go-playground/validator/v10"
)

const (
	IDPrefix     = "prod_"
	DefaultImage = "../images/placeholder.jpg"
)

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name" validate:"required"`
	Category    catalog.Category `json:"category" validate:"required,category"`
	Price       int              `json:"price" validate:"gte=0"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Date        *time.Time       `json:"date,omitempty"`
}

// Filter narrows a product listing. Zero fields match everything.
type Filter struct {
	Category catalog.Category
	// Search is a case-insensitive substring of the product name.
	Search string
}

func (f Filter) Match(p Product) bool {
	if f.Category != "" && f.Category != catalog.CategoryAll && p.Category != f.Category {
		return false
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	return search == "" || strings.Contains(strings.ToLower(p.Name), search)
}

// samples are written the first time the product list is read.
var samples = []Product{
	{
		ID:          "prod_1",
		Name:        "Sepatu Sneakers",
		Category:    catalog.CategoryFashion,
		Price:       350000,
		Image:       "../images/product1.jpg",
		Description: "Sepatu sneakers berkualitas",
	},
	{
		ID:          "prod_2",
		Name:        "Bola Futsal",
		Category:    catalog.CategorySports,
		Price:       250000,
		Image:       "../images/product2.jpg",
		Description: "Bola futsal profesional",
	},
	{
		ID:          "prod_3",
		Name:        "Headphone Wireless",
		Category:    catalog.CategoryElectronics,
		Price:       450000,
		Image:       "../images/product3.jpg",
		Description: "Headphone dengan kualitas suara jernih",
	},
}

// Samples returns a copy of the seed products.
func Samples() []Product {
	return append([]Product(nil), samples...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return catalog.Category(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate reports the first invalid field as InvalidProduct.
func (p Product) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.ErrInvalidProduct.WithField(fe.Field()).Withf("failed %s", fe.Tag())
	}
	return err
}
