package entity

import "time"

// StoredSession is the signed-in account persisted between runs.
type StoredSession struct {
	Email       string
	DisplayName string
	PhotoURL    string
	Provider    string
	IDToken     string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (s StoredSession) Identity() Identity {
	return Identity{
		Email:       s.Email,
		DisplayName: s.DisplayName,
		PhotoURL:    s.PhotoURL,
		Provider:    s.Provider,
		IDToken:     s.IDToken,
	}
}
