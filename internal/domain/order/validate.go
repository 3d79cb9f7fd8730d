package order

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/example/storefront/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^08[0-9]{8,11}$`)
	postalPattern = regexp.MustCompile(`^[0-9]{5}$`)
	phoneNoise    = strings.NewReplacer("-", "", " ", "")
)

// CheckoutForm is the customer input collected by the checkout page.
type CheckoutForm struct {
	Customer      Customer `json:"customer"`
	Address       Address  `json:"shippingAddress"`
	PaymentMethod string   `json:"paymentMethod" validate:"required,storepayment"`
}

// Normalize trims surrounding whitespace from every field.
func (f CheckoutForm) Normalize() CheckoutForm {
	f.Customer.Name = strings.TrimSpace(f.Customer.Name)
	f.Customer.Email = strings.TrimSpace(f.Customer.Email)
	f.Customer.Phone = strings.TrimSpace(f.Customer.Phone)
	f.Address.Address = strings.TrimSpace(f.Address.Address)
	f.Address.Province = strings.TrimSpace(f.Address.Province)
	f.Address.City = strings.TrimSpace(f.Address.City)
	f.Address.PostalCode = strings.TrimSpace(f.Address.PostalCode)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
	return f
}

// ValidPhone strips dashes and spaces, then requires 08 followed by 8 to 11 digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phoneNoise.Replace(phone))
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidPostalCode(code string) bool {
	return postalPattern.MatchString(code)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "storeemail", func(fl validator.FieldLevel) bool { return ValidEmail(fl.Field().String()) })
	mustRegister(v, "storephone", func(fl validator.FieldLevel) bool { return ValidPhone(fl.Field().String()) })
	mustRegister(v, "storepostal", func(fl validator.FieldLevel) bool { return ValidPostalCode(fl.Field().String()) })
	mustRegister(v, "storepayment", func(fl validator.FieldLevel) bool {
		return PaymentMethod(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

var tagErrors = map[string]*apperr.Error{
	"storeemail":   apperr.ErrInvalidEmail,
	"storephone":   apperr.ErrInvalidPhone,
	"storepostal":  apperr.ErrInvalidPostalCode,
	"storepayment": apperr.ErrInvalidPaymentMethod,
}

// Validate checks a normalized form and reports the first failing field in
// form order; a blank field is MissingField, a malformed one its format code.
func (f CheckoutForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return apperr.MissingField(fe.Field())
	}
	if e, ok := tagErrors[fe.Tag()]; ok {
		return e.WithField(fe.Field()).Withf("invalid value %q", fe.Value())
	}
	return verrs
}
