package access

import (
	"io"
	"log/slog"
	"testing"

	"artify/internal/entity"
	"artify/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name   string
		state  session.State
		origin string
		want   Decision
	}{
		{
			name:   "resolving waits",
			state:  session.Resolving(),
			origin: "/favorites",
			want:   Decision{Kind: Wait, Origin: "/favorites"},
		},
		{
			name:   "authenticated admits",
			state:  session.Authenticated(entity.Identity{Email: "a@example.com"}),
			origin: "/my-gallery",
			want:   Decision{Kind: Admit, Origin: "/my-gallery"},
		},
		{
			name:   "anonymous redirects with origin",
			state:  session.Anonymous(),
			origin: "/my-gallery?tab=2",
			want:   Decision{Kind: Redirect, Origin: "/my-gallery?tab=2", RedirectTo: "/login?redirect=%2Fmy-gallery%3Ftab%3D2"},
		},
		{
			name:  "anonymous without origin",
			state: session.Anonymous(),
			want:  Decision{Kind: Redirect, RedirectTo: "/login"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Project(tt.state, tt.origin, DefaultSignInPath))
		})
	}
}

func TestGuard_Mount(t *testing.T) {
	store := session.NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	g := NewGuard("")

	var got []Kind
	unmount := g.Mount(store, "/favorites", func(d Decision) { got = append(got, d.Kind) })

	require.Equal(t, []Kind{Wait}, got, "resolving renders only the placeholder")

	store.Apply(nil)
	store.Apply(&entity.Identity{Email: "a@example.com"})
	assert.Equal(t, []Kind{Wait, Redirect, Admit}, got)

	unmount()
	store.Apply(nil)
	assert.Len(t, got, 3, "no renders after unmount")
}

func TestGuard_ConsumeReturn(t *testing.T) {
	g := NewGuard("/signin")

	_, ok := g.ConsumeReturn()
	assert.False(t, ok)

	d := g.Evaluate(session.Anonymous(), "/favorites")
	assert.Equal(t, "/signin?redirect=%2Ffavorites", d.RedirectTo)

	path, ok := g.ConsumeReturn()
	assert.True(t, ok)
	assert.Equal(t, "/favorites", path)

	_, ok = g.ConsumeReturn()
	assert.False(t, ok, "return path is handed out once")
}
