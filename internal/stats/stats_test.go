package stats

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"artify/internal/entity"
	"artify/internal/platform/artifyapi"
	"artify/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Statistics(ctx context.Context) (entity.Statistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.Statistics), args.Error(1)
}

func TestPoller_Refresh(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SeedArtworks(testutil.TestArtworks(5)...)
	client := artifyapi.NewClient(artifyapi.Config{BaseURL: api.URL()}, nil)

	p := NewPoller(client, 0, nil)
	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Stats.AllArts)
	assert.Equal(t, 0, snap.Stats.Favourite)
	assert.False(t, snap.Refreshing)
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestPoller_FailureKeepsLastStats(t *testing.T) {
	m := &mockAPI{}
	m.On("Statistics", mock.Anything).Return(entity.Statistics{AllArts: 4, Favourite: 2}, nil).Once()
	m.On("Statistics", mock.Anything).Return(entity.Statistics{}, errors.New("boom")).Once()

	p := NewPoller(m, time.Minute, nil)
	first, err := p.Refresh(context.Background())
	require.NoError(t, err)

	snap, err := p.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, 4, snap.Stats.AllArts)
	assert.Equal(t, first.UpdatedAt, snap.UpdatedAt)
	assert.Error(t, snap.Err)
	m.AssertExpectations(t)
}

func TestPoller_RunTicks(t *testing.T) {
	var calls atomic.Int32
	m := &mockAPI{}
	m.On("Statistics", mock.Anything).Run(func(mock.Arguments) { calls.Add(1) }).Return(entity.Statistics{AllArts: 1}, nil)

	p := NewPoller(m, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
