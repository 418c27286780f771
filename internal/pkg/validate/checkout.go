package validate

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CheckoutInput is the client-supplied checkout form. Note there is no amount
// field: the price is always derived server-side from the plan type.
type CheckoutInput struct {
	FullName    string `json:"fullName" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Whatsapp    string `json:"whatsapp" validate:"required,min=10,max=15,phone_chars"`
	StoreName   string `json:"storeName" validate:"required,min=2,max=100"`
	TemplateKey string `json:"templateKey" validate:"required"`
	PlanType    string `json:"planType" validate:"omitempty,oneof=free pro enterprise"`
}

var checkoutMessages = map[string]string{
	"FullName":    "Nama mesti sekurang-kurangnya 2 aksara",
	"Email":       "Email tidak sah",
	"Whatsapp":    "Nombor WhatsApp tidak sah",
	"StoreName":   "Nama kedai mesti sekurang-kurangnya 2 aksara",
	"TemplateKey": "Sila pilih templat",
	"PlanType":    "Pelan tidak sah",
}

var jsonFieldNames = map[string]string{
	"FullName":    "fullName",
	"Email":       "email",
	"Whatsapp":    "whatsapp",
	"StoreName":   "storeName",
	"TemplateKey": "templateKey",
	"PlanType":    "planType",
}

var phoneChars = regexp.MustCompile(`^[0-9+]+$`)

func newCheckoutValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone_chars", func(fl validator.FieldLevel) bool {
		return phoneChars.MatchString(fl.Field().String())
	})
	return v
}

// CheckoutInputErrors validates the checkout form and returns a field->message
// map, empty when the input is valid. Defaults the plan to free.
func CheckoutInputErrors(in *CheckoutInput) map[string]string {
	if in.PlanType == "" {
		in.PlanType = "free"
	}

	v := newCheckoutValidator()
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	fieldErrors := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fieldErrors["_"] = err.Error()
		return fieldErrors
	}
	for _, fe := range verrs {
		name := jsonFieldNames[fe.StructField()]
		if name == "" {
			name = fe.StructField()
		}
		msg := checkoutMessages[fe.StructField()]
		if msg == "" {
			msg = "Nilai tidak sah"
		}
		fieldErrors[name] = msg
	}
	return fieldErrors
}

// NormalizePhone canonicalizes a Malaysian phone number to +60XXXXXXXXX form.
// Normalization is idempotent.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.HasPrefix(cleaned, "0") {
		return "+60" + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "+") {
		return "+60" + cleaned
	}
	return cleaned
}

var malaysianMobile = regexp.MustCompile(`^\+601[0-9]{8,9}$`)

// IsValidMalaysianPhone reports whether phone normalizes to a Malaysian
// mobile number.
func IsValidMalaysianPhone(phone string) bool {
	return malaysianMobile.MatchString(NormalizePhone(phone))
}
