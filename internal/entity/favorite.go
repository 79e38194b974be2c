package entity

import "time"

// FavoriteRecord links an account to an artwork and keeps a snapshot of the
// artwork's display fields taken when it was favorited.
type FavoriteRecord struct {
	ID             string    `json:"_id,omitempty"`
	OwnerEmail     string    `json:"userEmail"`
	ArtworkID      string    `json:"artworkId"`
	Title          string    `json:"title"`
	ImageURL       string    `json:"imageURL"`
	Category       string    `json:"category"`
	Medium         string    `json:"medium"`
	Price          Price     `json:"price"`
	ArtistName     string    `json:"artistName"`
	ArtistImageURL string    `json:"artistImageURL"`
	AddedAt        time.Time `json:"addedAt"`
}

// NewFavoriteRecord snapshots a for the given account.
func NewFavoriteRecord(a Artwork, email string, now time.Time) FavoriteRecord {
	return FavoriteRecord{
		OwnerEmail:     email,
		ArtworkID:      a.ID,
		Title:          a.Title,
		ImageURL:       a.ImageURL,
		Category:       a.Category,
		Medium:         a.Medium,
		Price:          a.Price,
		ArtistName:     a.OwnerName,
		ArtistImageURL: a.OwnerImageURL,
		AddedAt:        now,
	}
}
