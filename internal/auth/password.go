package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"artify/internal/entity"
	"artify/internal/httpx"
)

const DefaultIdentityURL = "https://identitytoolkit.googleapis.com"

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrNotConfigured      = errors.New("auth: provider not configured")
	ErrEmailExists        = errors.New("auth: an account with this email already exists")
	ErrReauthenticate     = errors.New("auth: session no longer valid, sign in again")
)

// Sign-in attempts are paced per identity host.
var signInLimiter = httpx.NewRateLimiter(1, 3)

// PasswordClient talks to an Identity Toolkit compatible endpoint: sign-in,
// sign-up and profile updates for email and password accounts.
type PasswordClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewPasswordClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *PasswordClient {
	if baseURL == "" {
		baseURL = DefaultIdentityURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	transport := httpx.Chain(nil,
		signInLimiter.Transport,
		httpx.RequestIDTransport,
		httpx.AccessLogTransport(logger.With("component", "identity")),
	)
	return &PasswordClient{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken        string `json:"idToken"`
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	ProfilePicture string `json:"profilePicture"`
	ExpiresIn      string `json:"expiresIn"`
}

type updateRequest struct {
	IDToken           string   `json:"idToken"`
	DisplayName       string   `json:"displayName,omitempty"`
	PhotoURL          string   `json:"photoUrl,omitempty"`
	DeleteAttribute   []string `json:"deleteAttribute,omitempty"`
	ReturnSecureToken bool     `json:"returnSecureToken"`
}

type updateResponse struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	IDToken     string `json:"idToken"`
}

// SignIn exchanges credentials for a signed-in identity.
func (c *PasswordClient) SignIn(ctx context.Context, email, password string) (entity.Identity, error) {
	var res signInResponse
	req := signInRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.call(ctx, "signInWithPassword", req, &res); err != nil {
		return entity.Identity{}, fmt.Errorf("sign in: %w", err)
	}
	return c.identity(res, email)
}

// SignUp creates an email and password account. The new account is signed in.
func (c *PasswordClient) SignUp(ctx context.Context, email, password string) (entity.Identity, error) {
	var res signInResponse
	req := signInRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.call(ctx, "signUp", req, &res); err != nil {
		return entity.Identity{}, fmt.Errorf("sign up: %w", err)
	}
	return c.identity(res, email)
}

// UpdateProfile changes the display name and photo of the account behind
// idToken. An empty photo URL removes the photo.
func (c *PasswordClient) UpdateProfile(ctx context.Context, idToken string, p Profile) (entity.Identity, error) {
	req := updateRequest{
		IDToken:           idToken,
		DisplayName:       p.DisplayName,
		PhotoURL:          p.PhotoURL,
		ReturnSecureToken: true,
	}
	if p.PhotoURL == "" {
		req.DeleteAttribute = []string{"PHOTO_URL"}
	}
	var res updateResponse
	if err := c.call(ctx, "update", req, &res); err != nil {
		return entity.Identity{}, fmt.Errorf("update profile: %w", err)
	}
	return entity.Identity{
		Email:       res.Email,
		DisplayName: res.DisplayName,
		PhotoURL:    res.PhotoURL,
		Provider:    entity.ProviderPassword,
		IDToken:     res.IDToken,
	}, nil
}

func (c *PasswordClient) identity(res signInResponse, email string) (entity.Identity, error) {
	if res.IDToken == "" {
		return entity.Identity{}, ErrMissingIDToken
	}
	id := entity.Identity{
		Email:       res.Email,
		DisplayName: res.DisplayName,
		PhotoURL:    res.ProfilePicture,
		Provider:    entity.ProviderPassword,
		IDToken:     res.IDToken,
	}
	if id.Email == "" {
		id.Email = email
	}
	return id, nil
}

// call posts body to /v1/accounts:<op> and decodes the reply into out.
func (c *PasswordClient) call(ctx context.Context, op string, body, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: identity api key missing", ErrNotConfigured)
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	u := c.baseURL + "/v1/accounts:" + op + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return identityError(resp.StatusCode, httpx.ErrorMessage(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// identityError maps Identity Toolkit error codes onto package errors.
// Codes may carry a suffix, as in "WEAK_PASSWORD : Password should be...".
func identityError(status int, msg string) error {
	switch {
	case strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(msg, "INVALID_EMAIL"):
		return ErrInvalidCredentials
	case strings.HasPrefix(msg, "EMAIL_EXISTS"):
		return ErrEmailExists
	case strings.HasPrefix(msg, "WEAK_PASSWORD"):
		return ErrWeakPassword
	case strings.HasPrefix(msg, "INVALID_ID_TOKEN"),
		strings.HasPrefix(msg, "TOKEN_EXPIRED"),
		strings.HasPrefix(msg, "USER_NOT_FOUND"):
		return ErrReauthenticate
	case msg != "":
		return errors.New(msg)
	default:
		return fmt.Errorf("unexpected status code: %d", status)
	}
}
