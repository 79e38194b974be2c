package gallery_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"artify/internal/confirm"
	"artify/internal/entity"
	"artify/internal/gallery"
	"artify/internal/gallery/mocks"
	"artify/internal/platform/artifyapi"
	"artify/internal/session"
	"artify/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedIn(t *testing.T) *session.Store {
	t.Helper()
	s := session.NewStore(nil)
	id := testutil.TestIdentity
	s.Apply(&id)
	return s
}

func fields(title string) gallery.Fields {
	return gallery.Fields{
		Title:       title,
		Description: "A new piece",
		ImageURL:    "https://img.example.com/new.jpg",
	}
}

func newFakeController(t *testing.T) (*gallery.Controller, *artifyapi.Client, *testutil.FakeAPI, *session.Store) {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	client := artifyapi.NewClient(artifyapi.Config{BaseURL: api.URL(), RPS: 100}, nil)
	sess := signedIn(t)
	return gallery.NewController(client, sess, nil, nil), client, api, sess
}

func TestController_RequiresAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	for _, sess := range []*session.Store{session.NewStore(nil), anonymous()} {
		c := gallery.NewController(mocks.NewMockAPI(ctrl), sess, nil, nil)

		_, err := c.Load(context.Background())
		assert.ErrorIs(t, err, gallery.ErrUnauthenticated)
		_, err = c.Create(context.Background(), fields("x"))
		assert.ErrorIs(t, err, gallery.ErrUnauthenticated)
		_, err = c.RequestDelete("art-001")
		assert.ErrorIs(t, err, gallery.ErrUnauthenticated)
	}
}

func anonymous() *session.Store {
	s := session.NewStore(nil)
	s.Apply(nil)
	return s
}

func TestController_LoadIncludesPrivate(t *testing.T) {
	c, _, api, _ := newFakeController(t)
	public := testutil.TestArtwork(1, "Urban")
	private := testutil.TestArtwork(2, "Urban")
	private.Visibility = entity.VisibilityPrivate
	foreign := testutil.TestArtwork(3, "Urban")
	foreign.OwnerEmail = "other@example.com"
	api.SeedArtworks(public, private, foreign)

	snap, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gallery.StatusReady, snap.Status)
	require.Len(t, snap.Artworks, 2)
	assert.Equal(t, private.ID, snap.Artworks[1].ID)
}

func TestController_CreateFillsOwnerAndRefetches(t *testing.T) {
	c, _, api, _ := newFakeController(t)

	id, err := c.Create(context.Background(), fields("Sunrise"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, ok := api.Artwork(id)
	require.True(t, ok)
	assert.Equal(t, testutil.TestEmail, stored.OwnerEmail)
	assert.Equal(t, testutil.TestIdentity.DisplayName, stored.OwnerName)
	assert.Equal(t, testutil.TestIdentity.PhotoURL, stored.OwnerImageURL)
	assert.Equal(t, entity.VisibilityPublic, stored.Visibility)
	assert.Equal(t, 0, stored.LikeCount)
	assert.Equal(t, entity.Price(0), stored.Price)

	snap := c.Snapshot()
	_, listed := snap.Artwork(id)
	assert.True(t, listed)
	assert.Equal(t, gallery.FormIdle, snap.Form)
	assert.NoError(t, snap.FormErr)
}

func TestController_CreateInvalidSendsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().CreateArtwork(gomock.Any(), gomock.Any()).Times(0)

	c := gallery.NewController(api, signedIn(t), nil, nil)
	_, err := c.Create(context.Background(), gallery.Fields{Title: "no image"})

	var verrs gallery.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has("imageURL"))
	assert.Equal(t, gallery.FormIdle, c.Snapshot().Form)
	assert.Equal(t, err, c.Snapshot().FormErr)
}

func TestController_SecondSubmitIsBusy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	api := mocks.NewMockAPI(ctrl)

	entered := make(chan struct{})
	release := make(chan struct{})
	api.EXPECT().CreateArtwork(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, entity.Artwork) (string, error) {
			close(entered)
			<-release
			return "art-new", nil
		}).Times(1)
	api.EXPECT().ListOwned(gomock.Any(), testutil.TestEmail).Return(nil, nil)

	c := gallery.NewController(api, signedIn(t), nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Create(context.Background(), fields("first"))
		done <- err
	}()
	<-entered
	assert.Equal(t, gallery.FormSubmitting, c.Snapshot().Form)

	_, err := c.Create(context.Background(), fields("second"))
	assert.ErrorIs(t, err, gallery.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, gallery.FormIdle, c.Snapshot().Form)
}

func TestController_CreateServerFailure(t *testing.T) {
	c, _, api, _ := newFakeController(t)
	api.FailNext("POST /add-art", http.StatusInternalServerError)

	_, err := c.Create(context.Background(), fields("Sunrise"))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, artifyapi.StatusCode(err))
	assert.Empty(t, api.Artworks())
	assert.Equal(t, gallery.FormIdle, c.Snapshot().Form)
	assert.Error(t, c.Snapshot().FormErr)
}

func TestController_Update(t *testing.T) {
	c, _, api, _ := newFakeController(t)
	art := testutil.TestArtwork(1, "Urban")
	art.LikeCount = 9
	api.SeedArtworks(art)
	ctx := context.Background()

	_, err := c.Load(ctx)
	require.NoError(t, err)

	f := gallery.FieldsFrom(art)
	f.Title = "Renamed"
	f.Visibility = entity.VisibilityPrivate
	require.NoError(t, c.Update(ctx, art.ID, f))

	stored, ok := api.Artwork(art.ID)
	require.True(t, ok)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, entity.VisibilityPrivate, stored.Visibility)
	assert.Equal(t, 9, stored.LikeCount, "updates never touch likes")
	assert.Equal(t, art.OwnerEmail, stored.OwnerEmail)

	updated, _ := c.Snapshot().Artwork(art.ID)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestController_UpdateNotOwned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().ListOwned(gomock.Any(), testutil.TestEmail).Return([]entity.Artwork{testutil.TestArtwork(1, "Urban")}, nil)
	api.EXPECT().UpdateArtwork(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	c := gallery.NewController(api, signedIn(t), nil, nil)
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	err = c.Update(context.Background(), "art-999", fields("x"))
	assert.ErrorIs(t, err, gallery.ErrNotOwner)
	_, err = c.RequestDelete("art-999")
	assert.ErrorIs(t, err, gallery.ErrNotOwner)
}

func TestController_DeleteWithConfirmation(t *testing.T) {
	c, client, api, _ := newFakeController(t)
	arts := []entity.Artwork{testutil.TestArtwork(1, "Urban"), testutil.TestArtwork(2, "Abstract")}
	api.SeedArtworks(arts...)
	ctx := context.Background()

	_, err := c.Load(ctx)
	require.NoError(t, err)
	count, err := client.CountByOwner(ctx, testutil.TestEmail)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	tok, err := c.RequestDelete(arts[0].ID)
	require.NoError(t, err)
	pending, ok := c.PendingDelete(tok)
	require.True(t, ok)
	assert.Equal(t, arts[0].Title, pending.Title)
	require.NoError(t, c.ConfirmDelete(ctx, tok))
	_, ok = c.PendingDelete(tok)
	assert.False(t, ok)

	_, listed := c.Snapshot().Artwork(arts[0].ID)
	assert.False(t, listed)
	assert.Len(t, c.Snapshot().Artworks, 1)

	count, err = client.CountByOwner(ctx, testutil.TestEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, api.Hits("DELETE /delete-art/{id}"))

	assert.ErrorIs(t, c.ConfirmDelete(ctx, tok), confirm.ErrUnknownToken)
}

func TestController_CancelDelete(t *testing.T) {
	c, _, api, _ := newFakeController(t)
	art := testutil.TestArtwork(1, "Urban")
	api.SeedArtworks(art)
	ctx := context.Background()
	_, err := c.Load(ctx)
	require.NoError(t, err)

	tok, err := c.RequestDelete(art.ID)
	require.NoError(t, err)
	c.CancelDelete(tok)

	assert.ErrorIs(t, c.ConfirmDelete(ctx, tok), confirm.ErrUnknownToken)
	assert.Equal(t, 0, api.Hits("DELETE /delete-art/{id}"))
	assert.Len(t, api.Artworks(), 1)
}

func TestController_ResetOnSignOut(t *testing.T) {
	c, _, api, sess := newFakeController(t)
	sess.RegisterReset(c)
	api.SeedArtworks(testutil.TestArtwork(1, "Urban"))

	_, err := c.Load(context.Background())
	require.NoError(t, err)
	tok, err := c.RequestDelete("art-001")
	require.NoError(t, err)

	sess.Apply(nil)

	assert.Empty(t, c.Snapshot().Artworks)
	assert.ErrorIs(t, c.ConfirmDelete(context.Background(), tok), gallery.ErrUnauthenticated)
}

func TestController_LoadFailure(t *testing.T) {
	c, _, api, _ := newFakeController(t)
	api.SeedArtworks(testutil.TestArtwork(1, "Urban"))
	api.FailNext("GET /my-arts", http.StatusInternalServerError)

	snap, err := c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, gallery.StatusFailed, snap.Status)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err = c.Reload(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Artworks, 1)
}
