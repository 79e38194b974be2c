package cli

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"artify/internal/auth"
	"artify/internal/entity"
	"artify/internal/store"
	"artify/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	api     *testutil.FakeAPI
	stateDB string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("IDENTITY_API_KEY", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	return &harness{
		t:       t,
		api:     testutil.NewFakeAPI(t),
		stateDB: filepath.Join(t.TempDir(), "state.db"),
	}
}

// run executes one artify invocation, as a fresh process would.
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	app := &App{}
	cmd := newRootCmd(app)
	defer app.close()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api-url", h.api.URL(), "--state-db", h.stateDB}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run("", args...)
	require.NoError(h.t, err, "artify %v\nstderr:\n%s", args, errOut)
	return out
}

// signIn stores a session the way a previous login would have.
func (h *harness) signIn(id entity.Identity) {
	h.t.Helper()
	ctx := context.Background()
	s, err := store.OpenSessionSQLite(ctx, h.stateDB)
	require.NoError(h.t, err)
	defer s.Close()
	require.NoError(h.t, s.Save(ctx, entity.StoredSession{
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		Provider:    id.Provider,
		ExpiresAt:   time.Now().Add(time.Hour),
		CreatedAt:   time.Now(),
	}))
}

// withIdentity points the identity provider settings at a fake.
func (h *harness) withIdentity() *testutil.FakeIdentity {
	h.t.Helper()
	idp := testutil.NewFakeIdentity(h.t)
	h.t.Setenv("IDENTITY_URL", idp.URL())
	h.t.Setenv("IDENTITY_API_KEY", testutil.FakeIdentityAPIKey)
	return idp
}

func TestBrowse_PaginationAndFilter(t *testing.T) {
	h := newHarness(t)
	h.api.SeedArtworks(testutil.TestArtworks(10)...)

	out := h.mustRun("browse")
	assert.Contains(t, out, "Study No. 1")
	assert.Contains(t, out, "Study No. 8")
	assert.NotContains(t, out, "Study No. 9")
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "--page 2 for next")
	assert.NotContains(t, out, "for previous")

	out = h.mustRun("browse", "--page", "2")
	assert.Contains(t, out, "Study No. 9")
	assert.Contains(t, out, "Page 2 of 2")
	assert.Contains(t, out, "--page 1 for previous")

	out = h.mustRun("browse", "--page", "9")
	assert.Contains(t, out, "Study No. 9")
	assert.Contains(t, out, "Page 2 of 2")
	assert.NotContains(t, out, "No artworks")

	out = h.mustRun("browse", "--search", "no. 3")
	assert.Contains(t, out, "Study No. 3")
	assert.NotContains(t, out, "Study No. 4")
	assert.Contains(t, out, "Page 1 of 2")

	out = h.mustRun("browse", "--search", "nothing like this")
	assert.Contains(t, out, "No artworks match the current filter.")
	assert.Equal(t, 6, h.api.Hits("GET /allarts"))
}

func TestBrowse_LikeUpdatesListing(t *testing.T) {
	h := newHarness(t)
	h.api.SeedArtworks(testutil.TestArtworks(3)...)

	out := h.mustRun("browse", "--like", "art-002", "--like", "art-002")
	assert.Equal(t, "2", likesColumn(t, out, "art-002"))
	assert.Equal(t, "0", likesColumn(t, out, "art-001"))
	assert.Equal(t, 2, h.api.Hits("PATCH /arts/like/{id}"))

	out, _, err := h.run("", "browse", "--like", "art-404")
	require.Error(t, err)
	assert.Equal(t, "2", likesColumn(t, out, "art-002"), "the page is still listed")
}

func TestBrowse_EmptyCatalog(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("browse")
	assert.Contains(t, out, "No artworks yet.")
	assert.NotContains(t, out, "match the current filter")
	assert.Contains(t, out, "Page 1 of 1")

	out = h.mustRun("browse", "--search", "anything")
	assert.Contains(t, out, "No artworks match the current filter.")
}

// likesColumn returns the likes cell of the listing row for id.
func likesColumn(t *testing.T, out, id string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if f := strings.Fields(line); len(f) > 2 && f[0] == id {
			return f[len(f)-2]
		}
	}
	t.Fatalf("no row for %s in:\n%s", id, out)
	return ""
}

func TestBrowse_Failure(t *testing.T) {
	h := newHarness(t)
	h.api.SeedArtworks(testutil.TestArtworks(3)...)
	h.api.FailNext("GET /allarts", http.StatusInternalServerError)

	out, errOut, err := h.run("", "browse")
	require.Error(t, err)
	assert.Contains(t, out, "Could not load artworks.")
	assert.NotContains(t, out, "No artworks")
	assert.Contains(t, errOut, "Could not load artworks")
}

func TestArtShowAndLike(t *testing.T) {
	h := newHarness(t)
	h.api.SeedArtworks(testutil.TestArtworks(3)...)

	out := h.mustRun("art", "show", "art-002")
	assert.Contains(t, out, "Study No. 2")
	assert.Contains(t, out, "Artworks by this artist: 3")

	assert.Contains(t, h.mustRun("like", "art-002"), "art-002 now has 1 likes")
	assert.Contains(t, h.mustRun("like", "art-002"), "art-002 now has 2 likes")

	_, _, err := h.run("", "like", "art-404")
	assert.Error(t, err)
}

func TestProtectedCommandsRequireSignIn(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"favorites", "list"},
		{"favorites", "add", "art-001"},
		{"mine", "list"},
		{"mine", "delete", "art-001", "--yes"},
	} {
		_, _, err := h.run("", args...)
		require.Error(t, err, "%v", args)
		assert.ErrorIs(t, err, errSignInRequired)
		assert.Contains(t, err.Error(), "artify "+strings.Join(args[:2], " "))
	}
	assert.Zero(t, h.api.Hits("GET /favorites"))
	assert.Zero(t, h.api.Hits("GET /my-arts"))
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)
	h.withIdentity().AddAccount(testutil.TestIdentity, "s3cret")

	assert.Contains(t, h.mustRun("whoami"), "Not signed in")

	_, _, err := h.run("", "login", "--email", testutil.TestEmail, "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong email or password")

	out, _, err := h.run("s3cret\n", "login", "--email", testutil.TestEmail)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Test Artist <"+testutil.TestEmail+">")

	// The session outlives the process that signed in.
	out = h.mustRun("whoami")
	assert.Contains(t, out, testutil.TestEmail)
	assert.Contains(t, out, entity.ProviderPassword)

	assert.Contains(t, h.mustRun("logout"), "Signed out "+testutil.TestEmail)
	assert.Contains(t, h.mustRun("whoami"), "Not signed in")
}

func TestRegisterAndProfile(t *testing.T) {
	h := newHarness(t)
	idp := h.withIdentity()
	idp.AddAccount(testutil.TestIdentity, "s3cret")

	_, _, err := h.run("", "register", "--email", "new@example.com", "--password", "lowercase", "--name", "New")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
	assert.Zero(t, idp.Hits("signUp"))

	_, _, err = h.run("", "register", "--email", testutil.TestEmail, "--password", "Brush5", "--name", "Copy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, _, err := h.run("Brush5\n", "register", "--email", "new@example.com", "--name", "New Artist")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created for new@example.com")
	assert.Contains(t, out, "Signed in as New Artist <new@example.com>")

	_, _, err = h.run("", "profile")
	assert.Error(t, err, "nothing to change")

	_, _, err = h.run("", "profile", "--photo", "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http:// or https://")

	out = h.mustRun("profile", "--name", "Renamed", "--default-avatar")
	assert.Contains(t, out, "Renamed")
	assert.Contains(t, out, "api.dicebear.com")

	account, ok := idp.Account("new@example.com")
	require.True(t, ok)
	assert.Equal(t, "Renamed", account.DisplayName)
	assert.Equal(t, auth.DefaultAvatarURL("new@example.com"), account.PhotoURL)

	out = h.mustRun("whoami")
	assert.Contains(t, out, "Renamed")

	h.mustRun("profile", "--photo", "")
	account, _ = idp.Account("new@example.com")
	assert.Empty(t, account.PhotoURL)
	assert.Equal(t, "Renamed", account.DisplayName)

	h.mustRun("logout")
	_, _, err = h.run("", "profile", "--name", "X")
	assert.ErrorIs(t, err, errSignInRequired)
}

func TestLoginGoogleNotConfigured(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "login", "google-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestFavorites(t *testing.T) {
	h := newHarness(t)
	h.signIn(testutil.TestIdentity)
	h.api.SeedArtworks(testutil.TestArtworks(2)...)

	assert.Contains(t, h.mustRun("favorites", "list"), "No favorites yet.")
	assert.Contains(t, h.mustRun("favorites", "add", "art-001"), `Added "Study No. 1"`)
	assert.Contains(t, h.mustRun("favorites", "add", "art-001"), "already in your favorites")
	require.Len(t, h.api.Favorites(), 1)

	out := h.mustRun("favorites", "list")
	assert.Contains(t, out, "Study No. 1")
	favID := h.api.Favorites()[0].ID
	assert.Contains(t, out, favID)

	out, errOut, err := h.run("n\n", "favorites", "remove", favID)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Contains(t, errOut, `Remove "Study No. 1" from your favorites?`)
	assert.Len(t, h.api.Favorites(), 1)

	out, _, err = h.run("y\n", "favorites", "remove", favID)
	require.NoError(t, err)
	assert.Contains(t, out, `Removed "Study No. 1"`)
	assert.Empty(t, h.api.Favorites())

	_, _, err = h.run("", "favorites", "remove", favID, "--yes")
	assert.Error(t, err)
}

func TestMine(t *testing.T) {
	h := newHarness(t)
	h.signIn(testutil.TestIdentity)
	foreign := testutil.TestArtwork(9, "Urban")
	foreign.OwnerEmail = testutil.OtherIdentity.Email
	h.api.SeedArtworks(foreign)

	assert.Contains(t, h.mustRun("mine", "list"), "You have not submitted any artworks.")

	_, _, err := h.run("", "mine", "create", "--title", "No image", "--description", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--image-url")
	assert.Len(t, h.api.Artworks(), 1)

	out := h.mustRun("mine", "create",
		"--title", "Dusk <b>over</b> the bay",
		"--description", "Oil study",
		"--image-url", "https://img.example.com/dusk.jpg",
		"--price", "250",
		"--visibility", "Private")
	require.Contains(t, out, "Created ")
	id := strings.TrimSpace(strings.TrimPrefix(out, "Created "))

	created, ok := h.api.Artwork(id)
	require.True(t, ok)
	assert.Equal(t, "Dusk over the bay", created.Title)
	assert.Equal(t, testutil.TestEmail, created.OwnerEmail)
	assert.Equal(t, entity.VisibilityPrivate, created.Visibility)

	out = h.mustRun("mine", "list")
	assert.Contains(t, out, "Dusk over the bay")
	assert.NotContains(t, out, foreign.Title)

	h.mustRun("mine", "update", id, "--title", "Dawn")
	updated, _ := h.api.Artwork(id)
	assert.Equal(t, "Dawn", updated.Title)
	assert.Equal(t, "Oil study", updated.Description)
	assert.Equal(t, entity.Price(250), updated.Price)

	_, _, err = h.run("", "mine", "update", foreign.ID, "--title", "Mine now")
	assert.Error(t, err)

	out, errOut, err := h.run("\n", "mine", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Contains(t, errOut, `Delete "Dawn"? This cannot be undone.`)
	_, ok = h.api.Artwork(id)
	assert.True(t, ok)

	assert.Contains(t, h.mustRun("mine", "delete", id, "--yes"), "Deleted "+id)
	_, ok = h.api.Artwork(id)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.api.SeedArtworks(testutil.TestArtworks(5)...)
	h.api.SeedFavorites(entity.FavoriteRecord{OwnerEmail: testutil.TestEmail, ArtworkID: "art-001"})

	assert.Contains(t, h.mustRun("stats"), "Artworks: 5  Favorites: 1")

	h.api.FailNext("GET /statistics", http.StatusServiceUnavailable)
	_, _, err := h.run("", "stats")
	assert.Error(t, err)
}
