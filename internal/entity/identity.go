package entity

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Provider    string `json:"provider"`
	IDToken     string `json:"-"`
}

// Same reports whether two identities belong to the same account.
func (i *Identity) Same(other *Identity) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Email == other.Email
}
