package entity

import "time"

type Statistics struct {
	AllArts   int       `json:"allArts"`
	Favourite int       `json:"favourite"`
	FetchedAt time.Time `json:"-"`
}
