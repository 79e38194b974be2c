package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	VisibilityPublic  = "Public"
	VisibilityPrivate = "Private"
)

// Categories offered by the submission form. Category itself is an open string.
var Categories = []string{"Landscape", "Abstract", "Seascape", "Botanical", "Portrait", "Figurative", "Urban"}

type Artwork struct {
	ID            string    `json:"_id,omitempty"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Medium        string    `json:"medium"`
	Description   string    `json:"description"`
	Dimensions    string    `json:"dimensions"`
	Price         Price     `json:"price"`
	ImageURL      string    `json:"imageURL"`
	OwnerName     string    `json:"artistName"`
	OwnerImageURL string    `json:"artistImageURL"`
	OwnerEmail    string    `json:"userEmail"`
	Visibility    string    `json:"visibility"`
	LikeCount     int       `json:"likes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OwnedBy reports whether the artwork belongs to the account with the given email.
func (a Artwork) OwnedBy(email string) bool {
	return email != "" && strings.EqualFold(a.OwnerEmail, email)
}

// Price is a non-negative amount. The API has stored it both as a number and
// as a form string, so decoding accepts either.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

// ParsePrice turns form input into a Price. Blank input is 0.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return Price(f), nil
}
