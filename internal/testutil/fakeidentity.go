package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"artify/internal/entity"
)

const FakeIdentityAPIKey = "test-key"

type fakeAccount struct {
	password string
	name     string
	photo    string
}

// FakeIdentity emulates the Identity Toolkit accounts endpoints
// (signInWithPassword, signUp, update) for a set of in-memory accounts.
type FakeIdentity struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[string]*fakeAccount
	tokens   map[string]string
	hits     map[string]int
}

func NewFakeIdentity(t testing.TB) *FakeIdentity {
	t.Helper()
	f := &FakeIdentity{
		accounts: map[string]*fakeAccount{},
		tokens:   map[string]string{},
		hits:     map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/accounts:signInWithPassword", f.signIn)
	mux.HandleFunc("POST /v1/accounts:signUp", f.signUp)
	mux.HandleFunc("POST /v1/accounts:update", f.update)
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != FakeIdentityAPIKey {
			identityFailure(w, "API_KEY_INVALID")
			return
		}
		f.mu.Lock()
		f.hits[r.URL.Path]++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeIdentity) URL() string { return f.Server.URL }

// AddAccount registers an existing account.
func (f *FakeIdentity) AddAccount(id entity.Identity, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id.Email] = &fakeAccount{password: password, name: id.DisplayName, photo: id.PhotoURL}
}

// Account returns the stored profile of email.
func (f *FakeIdentity) Account(email string) (entity.Identity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok {
		return entity.Identity{}, false
	}
	return entity.Identity{Email: email, DisplayName: a.name, PhotoURL: a.photo, Provider: entity.ProviderPassword}, true
}

// Hits returns how many requests reached op, for example "signUp".
func (f *FakeIdentity) Hits(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits["/v1/accounts:"+op]
}

type credentials struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

func (f *FakeIdentity) issue(email string, a *fakeAccount) map[string]string {
	tok := GenerateTestIDToken("identity-secret", entity.Identity{Email: email, DisplayName: a.name, PhotoURL: a.photo}, time.Hour)
	f.tokens[tok] = email
	return map[string]string{
		"idToken":        tok,
		"email":          email,
		"displayName":    a.name,
		"profilePicture": a.photo,
		"expiresIn":      "3600",
	}
}

func (f *FakeIdentity) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentials
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[req.Email]
	if !ok || a.password != req.Password {
		identityFailure(w, "INVALID_LOGIN_CREDENTIALS")
		return
	}
	writeJSON(w, http.StatusOK, f.issue(req.Email, a))
}

func (f *FakeIdentity) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[req.Email]; ok {
		identityFailure(w, "EMAIL_EXISTS")
		return
	}
	if len(req.Password) < 6 {
		identityFailure(w, "WEAK_PASSWORD : Password should be at least 6 characters")
		return
	}
	a := &fakeAccount{password: req.Password}
	f.accounts[req.Email] = a
	writeJSON(w, http.StatusOK, f.issue(req.Email, a))
}

func (f *FakeIdentity) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken         string   `json:"idToken"`
		DisplayName     string   `json:"displayName"`
		PhotoURL        string   `json:"photoUrl"`
		DeleteAttribute []string `json:"deleteAttribute"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.tokens[req.IDToken]
	if !ok {
		identityFailure(w, "INVALID_ID_TOKEN")
		return
	}
	a := f.accounts[email]
	if req.DisplayName != "" {
		a.name = req.DisplayName
	}
	if req.PhotoURL != "" {
		a.photo = req.PhotoURL
	}
	for _, attr := range req.DeleteAttribute {
		if attr == "PHOTO_URL" {
			a.photo = ""
		}
	}
	issued := f.issue(email, a)
	writeJSON(w, http.StatusOK, map[string]string{
		"email":       email,
		"displayName": a.name,
		"photoUrl":    a.photo,
		"idToken":     issued["idToken"],
	})
}

func identityFailure(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{"code": http.StatusBadRequest, "message": message},
	})
}
