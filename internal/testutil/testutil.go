package testutil

import (
	"fmt"
	"time"

	"artify/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

const TestEmail = "artist@example.com"

// TestIdentity is a signed-in password account.
var TestIdentity = entity.Identity{
	Email:       TestEmail,
	DisplayName: "Test Artist",
	PhotoURL:    "https://img.example.com/artist.png",
	Provider:    entity.ProviderPassword,
}

// OtherIdentity is a second account, used for account switches.
var OtherIdentity = entity.Identity{
	Email:       "other@example.com",
	DisplayName: "Other Artist",
	Provider:    entity.ProviderGoogle,
}

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// TestArtwork returns a public artwork with a stable ID derived from n.
func TestArtwork(n int, category string) entity.Artwork {
	return entity.Artwork{
		ID:            fmt.Sprintf("art-%03d", n),
		Title:         fmt.Sprintf("Study No. %d", n),
		Category:      category,
		Medium:        "Oil on canvas",
		Description:   "A test artwork",
		Dimensions:    "50x70 cm",
		Price:         entity.Price(100 + n),
		ImageURL:      fmt.Sprintf("https://img.example.com/%d.jpg", n),
		OwnerName:     TestIdentity.DisplayName,
		OwnerImageURL: TestIdentity.PhotoURL,
		OwnerEmail:    TestEmail,
		Visibility:    entity.VisibilityPublic,
		CreatedAt:     epoch.Add(time.Duration(n) * time.Hour),
	}
}

// TestArtworks returns n public artworks cycling through the categories.
func TestArtworks(n int) []entity.Artwork {
	out := make([]entity.Artwork, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, TestArtwork(i, entity.Categories[(i-1)%len(entity.Categories)]))
	}
	return out
}

// GenerateTestIDToken signs an HS256 token carrying the identity claims the
// token store reads back on restore.
func GenerateTestIDToken(secret string, id entity.Identity, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":            id.Email,
		"email":          id.Email,
		"name":           id.DisplayName,
		"picture":        id.PhotoURL,
		"email_verified": true,
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return token
}

// GenerateExpiredIDToken signs a token that expired an hour ago.
func GenerateExpiredIDToken(secret string, id entity.Identity) string {
	return GenerateTestIDToken(secret, id, -time.Hour)
}
