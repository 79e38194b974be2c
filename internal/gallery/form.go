package gallery

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"artify/internal/entity"
	"artify/internal/platform/artifyapi"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate = validator.New()
	strip    = bluemonday.StrictPolicy()
)

// Fields is the raw content of the submission form.
type Fields struct {
	Title       string
	Category    string
	Medium      string
	Description string
	Dimensions  string
	Price       string
	ImageURL    string
	Visibility  string
}

type form struct {
	Title       string  `validate:"required,max=200"`
	Category    string  `validate:"max=60"`
	Medium      string  `validate:"max=120"`
	Description string  `validate:"required,max=5000"`
	Dimensions  string  `validate:"max=120"`
	Price       float64 `validate:"gte=0"`
	ImageURL    string  `validate:"required,url"`
	Visibility  string  `validate:"required,oneof=Public Private"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every problem found in a form. Nothing is sent to
// the server while a form has any.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Message)
	}
	return "invalid artwork: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Validate cleans f and turns it into the fields sent to the API. Markup is
// stripped from free text, a blank price is 0 and a blank visibility is
// Public.
func Validate(f Fields) (artifyapi.ArtworkPatch, error) {
	in := form{
		Title:       clean(f.Title),
		Category:    clean(f.Category),
		Medium:      clean(f.Medium),
		Description: clean(f.Description),
		Dimensions:  clean(f.Dimensions),
		ImageURL:    strings.TrimSpace(f.ImageURL),
		Visibility:  strings.TrimSpace(f.Visibility),
	}
	if in.Visibility == "" {
		in.Visibility = entity.VisibilityPublic
	}

	var errs ValidationErrors
	price, err := entity.ParsePrice(f.Price)
	if err != nil {
		errs = append(errs, FieldError{Field: "price", Message: "price must be a number"})
	}
	in.Price = float64(price)

	errs = append(errs, validateStruct(in)...)
	if len(errs) > 0 {
		return artifyapi.ArtworkPatch{}, errs
	}

	return artifyapi.ArtworkPatch{
		Title:       in.Title,
		Category:    in.Category,
		Medium:      in.Medium,
		Description: in.Description,
		Dimensions:  in.Dimensions,
		Price:       entity.Price(in.Price),
		ImageURL:    in.ImageURL,
		Visibility:  in.Visibility,
	}, nil
}

// FieldsFrom fills a form with an existing artwork, for editing.
func FieldsFrom(a entity.Artwork) Fields {
	return Fields{
		Title:       a.Title,
		Category:    a.Category,
		Medium:      a.Medium,
		Description: a.Description,
		Dimensions:  a.Dimensions,
		Price:       fmt.Sprint(float64(a.Price)),
		ImageURL:    a.ImageURL,
		Visibility:  a.Visibility,
	}
}

func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strip.Sanitize(s)))
}

func validateStruct(s any) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{{Field: "form", Message: err.Error()}}
	}

	var out ValidationErrors
	for _, e := range verrs {
		field := strings.ToLower(e.Field()[:1]) + e.Field()[1:]
		param := e.Param()

		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		case "gte":
			message = fmt.Sprintf("%s must not be negative", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(param, " ", ", "))
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		out = append(out, FieldError{Field: field, Message: message})
	}
	return out
}
