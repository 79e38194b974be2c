package artifyapi

import (
	"strings"

	"artify/internal/entity"
)

// ArtworkPage matches GET /allarts.
type ArtworkPage struct {
	Data       []entity.Artwork `json:"data"`
	TotalPages int              `json:"totalPages"`
}

// ArtworkPatch is the body of PATCH /update-art/:id.
type ArtworkPatch struct {
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	Medium      string       `json:"medium"`
	Description string       `json:"description"`
	Dimensions  string       `json:"dimensions"`
	Price       entity.Price `json:"price"`
	ImageURL    string       `json:"imageURL"`
	Visibility  string       `json:"visibility"`
}

// Apply copies the patch onto a.
func (p ArtworkPatch) Apply(a *entity.Artwork) {
	a.Title = p.Title
	a.Category = p.Category
	a.Medium = p.Medium
	a.Description = p.Description
	a.Dimensions = p.Dimensions
	a.Price = p.Price
	a.ImageURL = p.ImageURL
	a.Visibility = p.Visibility
}

type countResponse struct {
	Count int `json:"count"`
}

type likeResponse struct {
	Success bool `json:"success"`
	Likes   int  `json:"likes"`
}

type insertResponse struct {
	InsertedID string `json:"insertedId"`
	Message    string `json:"message"`
}

type deleteResponse struct {
	DeletedCount int `json:"deletedCount"`
}

// ack covers Mongo-style write acknowledgements; every field is optional.
type ack struct {
	Acknowledged *bool `json:"acknowledged"`
}

const alreadyAddedMessage = "Already added"

// AddFavoriteResult matches POST /favorites. Exactly one of InsertedID and
// Message is normally set.
type AddFavoriteResult struct {
	InsertedID string
	Message    string
}

// AlreadyAdded reports whether the server found an existing record for the
// same account and artwork.
func (r AddFavoriteResult) AlreadyAdded() bool {
	return strings.EqualFold(strings.TrimSpace(r.Message), alreadyAddedMessage)
}
