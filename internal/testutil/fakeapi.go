package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"artify/internal/entity"

	"github.com/google/uuid"
)

// FakeAPI is an in-memory stand-in for the artify REST API. It keeps
// artworks and favorite records in memory and serves the same routes and
// response shapes as the real server.
type FakeAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	arts      []entity.Artwork
	favorites []entity.FavoriteRecord
	failures  map[string][]int
	holds     []*hold
	hits      map[string]int
}

type hold struct {
	match   func(*http.Request) bool
	release chan struct{}
}

// NewFakeAPI starts the server and closes it when t finishes.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		failures: map[string][]int{},
		hits:     map[string]int{},
	}

	mux := http.NewServeMux()
	f.handle(mux, "GET /allarts", f.listArtworks)
	f.handle(mux, "GET /arts/{id}", f.getArtwork)
	f.handle(mux, "GET /arts/count/{email}", f.countByOwner)
	f.handle(mux, "PATCH /arts/like/{id}", f.like)
	f.handle(mux, "POST /add-art", f.createArtwork)
	f.handle(mux, "GET /my-arts", f.listOwned)
	f.handle(mux, "PATCH /update-art/{id}", f.updateArtwork)
	f.handle(mux, "DELETE /delete-art/{id}", f.deleteArtwork)
	f.handle(mux, "GET /favorites", f.listFavorites)
	f.handle(mux, "POST /favorites", f.addFavorite)
	f.handle(mux, "DELETE /favorites/{id}", f.deleteFavorite)
	f.handle(mux, "GET /statistics", f.statistics)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(func() {
		f.releaseAll()
		f.Server.Close()
	})
	return f
}

func (f *FakeAPI) URL() string { return f.Server.URL }

// SeedArtworks appends artworks in the given order.
func (f *FakeAPI) SeedArtworks(arts ...entity.Artwork) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.arts = append(f.arts, arts...)
}

// SeedFavorites appends favorite records, assigning IDs where missing.
func (f *FakeAPI) SeedFavorites(recs ...entity.FavoriteRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range recs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		f.favorites = append(f.favorites, r)
	}
}

func (f *FakeAPI) Artworks() []entity.Artwork {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.arts)
}

func (f *FakeAPI) Favorites() []entity.FavoriteRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.favorites)
}

// Artwork returns the stored artwork with the given ID.
func (f *FakeAPI) Artwork(id string) (entity.Artwork, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return entity.Artwork{}, false
	}
	return f.arts[i], true
}

// FailNext makes the next request to route answer with status. Routes use
// the mux pattern form, e.g. "PATCH /arts/like/{id}". Calls queue up.
func (f *FakeAPI) FailNext(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = append(f.failures[route], status)
}

// Hits returns how many requests reached route.
func (f *FakeAPI) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

// Hold blocks every matching request until the returned release func is
// called or the request context ends.
func (f *FakeAPI) Hold(match func(*http.Request) bool) (release func()) {
	h := &hold{match: match, release: make(chan struct{})}
	f.mu.Lock()
	f.holds = append(f.holds, h)
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.holds = slices.DeleteFunc(f.holds, func(x *hold) bool { return x == h })
			f.mu.Unlock()
			close(h.release)
		})
	}
}

// HoldPage holds GET /allarts requests for one page number.
func (f *FakeAPI) HoldPage(page int) (release func()) {
	want := strconv.Itoa(page)
	return f.Hold(func(r *http.Request) bool {
		return r.URL.Path == "/allarts" && r.URL.Query().Get("page") == want
	})
}

func (f *FakeAPI) releaseAll() {
	f.mu.Lock()
	hs := f.holds
	f.holds = nil
	f.mu.Unlock()
	for _, h := range hs {
		close(h.release)
	}
}

func (f *FakeAPI) handle(mux *http.ServeMux, route string, h http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[route]++
		var status int
		if q := f.failures[route]; len(q) > 0 {
			status = q[0]
			f.failures[route] = q[1:]
		}
		var wait []chan struct{}
		for _, hd := range f.holds {
			if hd.match(r) {
				wait = append(wait, hd.release)
			}
		}
		f.mu.Unlock()

		for _, ch := range wait {
			select {
			case <-ch:
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		h(w, r)
	})
}

func (f *FakeAPI) indexOf(id string) int {
	return slices.IndexFunc(f.arts, func(a entity.Artwork) bool { return a.ID == id })
}

func (f *FakeAPI) listArtworks(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 8)

	f.mu.Lock()
	var public []entity.Artwork
	for _, a := range f.arts {
		if a.Visibility == "" || a.Visibility == entity.VisibilityPublic {
			public = append(public, a)
		}
	}
	f.mu.Unlock()

	total := (len(public) + limit - 1) / limit
	start := min((page-1)*limit, len(public))
	end := min(start+limit, len(public))
	data := public[start:end]
	if data == nil {
		data = []entity.Artwork{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "totalPages": total})
}

func (f *FakeAPI) getArtwork(w http.ResponseWriter, r *http.Request) {
	a, ok := f.Artwork(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "artwork not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (f *FakeAPI) countByOwner(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	f.mu.Lock()
	n := 0
	for _, a := range f.arts {
		if a.OwnedBy(email) {
			n++
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (f *FakeAPI) like(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	i := f.indexOf(r.PathValue("id"))
	if i < 0 {
		f.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false})
		return
	}
	f.arts[i].LikeCount++
	likes := f.arts[i].LikeCount
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likes": likes})
}

func (f *FakeAPI) createArtwork(w http.ResponseWriter, r *http.Request) {
	var a entity.Artwork
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	a.ID = uuid.NewString()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	f.SeedArtworks(a)
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "insertedId": a.ID})
}

func (f *FakeAPI) listOwned(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	f.mu.Lock()
	out := []entity.Artwork{}
	for _, a := range f.arts {
		if a.OwnedBy(email) {
			out = append(out, a)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) updateArtwork(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "matchedCount": 0, "modifiedCount": 0})
		return
	}

	// Merge the patch over the stored document the way a $set would.
	stored, _ := json.Marshal(f.arts[i])
	var doc map[string]json.RawMessage
	_ = json.Unmarshal(stored, &doc)
	for k, v := range patch {
		if k == "_id" {
			continue
		}
		doc[k] = v
	}
	merged, _ := json.Marshal(doc)
	var updated entity.Artwork
	if err := json.Unmarshal(merged, &updated); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.arts[i] = updated
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "matchedCount": 1, "modifiedCount": 1})
}

func (f *FakeAPI) deleteArtwork(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	n := len(f.arts)
	id := r.PathValue("id")
	f.arts = slices.DeleteFunc(f.arts, func(a entity.Artwork) bool { return a.ID == id })
	deleted := n - len(f.arts)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "deletedCount": deleted})
}

func (f *FakeAPI) listFavorites(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	f.mu.Lock()
	out := []entity.FavoriteRecord{}
	for _, rec := range f.favorites {
		if strings.EqualFold(rec.OwnerEmail, email) {
			out = append(out, rec)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) addFavorite(w http.ResponseWriter, r *http.Request) {
	var rec entity.FavoriteRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.favorites {
		if strings.EqualFold(existing.OwnerEmail, rec.OwnerEmail) && existing.ArtworkID == rec.ArtworkID {
			writeJSON(w, http.StatusOK, map[string]string{"message": "Already added"})
			return
		}
	}
	rec.ID = uuid.NewString()
	f.favorites = append(f.favorites, rec)
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "insertedId": rec.ID})
}

func (f *FakeAPI) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	email := r.URL.Query().Get("email")

	f.mu.Lock()
	n := len(f.favorites)
	f.favorites = slices.DeleteFunc(f.favorites, func(rec entity.FavoriteRecord) bool {
		return rec.ID == id && strings.EqualFold(rec.OwnerEmail, email)
	})
	deleted := n - len(f.favorites)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "deletedCount": deleted})
}

func (f *FakeAPI) statistics(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	stats := entity.Statistics{AllArts: len(f.arts), Favourite: len(f.favorites)}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
