package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var ErrWeakPassword = errors.New("auth: password must contain an uppercase letter, a lowercase letter and at least 6 characters")

var validate = validator.New()

// Profile is the editable part of an account.
type Profile struct {
	DisplayName string `validate:"required,max=100"`
	PhotoURL    string `validate:"omitempty,http_url"`
}

// Validate trims p and checks it. A blank photo is allowed.
func (p Profile) Validate() (Profile, error) {
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.PhotoURL = strings.TrimSpace(p.PhotoURL)

	err := validate.Struct(p)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return p, err
	}
	switch e := verrs[0]; {
	case e.Field() == "DisplayName" && e.Tag() == "required":
		return p, errors.New("display name cannot be empty")
	case e.Field() == "DisplayName":
		return p, fmt.Errorf("display name must be at most %s characters", e.Param())
	default:
		return p, errors.New("photo must be an http:// or https:// URL")
	}
}

// ValidatePassword applies the sign-up password rule: at least 6 characters
// with one lowercase and one uppercase ASCII letter.
func ValidatePassword(pw string) error {
	var lower, upper bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		}
	}
	if !lower || !upper || utf8.RuneCountInString(pw) < 6 {
		return ErrWeakPassword
	}
	return nil
}

// DefaultAvatarURL is the generated avatar shown for accounts without a photo.
func DefaultAvatarURL(email string) string {
	if email == "" {
		email = "user"
	}
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(email)
}
