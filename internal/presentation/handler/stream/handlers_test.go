package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kinosync/kinosync/internal/domain"
	"github.com/kinosync/kinosync/internal/infrastructure/configs"
)

type fakeMovies struct {
	movies map[string]*domain.Movie
}

func (f *fakeMovies) Resolve(_ context.Context, id string) (*domain.Movie, error) {
	movie, ok := f.movies[id]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	return movie, nil
}

func writeTestFile(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "movie.mp4")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestHandler(t *testing.T, fileSize int) (http.Handler, string) {
	t.Helper()
	id := primitive.NewObjectID().Hex()
	movies := &fakeMovies{movies: map[string]*domain.Movie{
		id: {ID: id, Title: "test", FilePath: writeTestFile(t, fileSize)},
	}}

	h := NewHandler(movies, zap.NewNop().Sugar(), nil, configs.StreamConfig{})
	router := chi.NewRouter()
	router.Get("/api/stream/{movieId}", h.StreamMovie)
	return router, id
}

func get(h http.Handler, url, rangeHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStreamFullFile(t *testing.T) {
	h, id := newTestHandler(t, 1000)

	rec := get(h, "/api/stream/"+id, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Length"); got != "1000" {
		t.Errorf("Content-Length = %q, want 1000", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q", got)
	}
	if got := rec.Body.Len(); got != 1000 {
		t.Errorf("body length = %d, want 1000", got)
	}
}

func TestStreamBoundedRange(t *testing.T) {
	h, id := newTestHandler(t, 1000)

	rec := get(h, "/api/stream/"+id, "bytes=100-199")

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 100-199/1000" {
		t.Errorf("Content-Range = %q, want bytes 100-199/1000", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "100" {
		t.Errorf("Content-Length = %q, want 100", got)
	}

	body := rec.Body.Bytes()
	if len(body) != 100 {
		t.Fatalf("body length = %d, want 100", len(body))
	}
	if body[0] != byte(100%251) || body[99] != byte(199%251) {
		t.Error("body does not match the requested span")
	}
}

func TestStreamOpenEndedRange(t *testing.T) {
	h, id := newTestHandler(t, 1000)

	rec := get(h, "/api/stream/"+id, "bytes=500-")

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 500-999/1000" {
		t.Errorf("Content-Range = %q, want bytes 500-999/1000", got)
	}
	if got := rec.Body.Len(); got != 500 {
		t.Errorf("body length = %d, want 500", got)
	}
}

func TestStreamEndClampedToSize(t *testing.T) {
	h, id := newTestHandler(t, 1000)

	rec := get(h, "/api/stream/"+id, "bytes=900-5000")

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 900-999/1000" {
		t.Errorf("Content-Range = %q, want bytes 900-999/1000", got)
	}
}

func TestStreamMalformedRangeServesFullFile(t *testing.T) {
	tests := []string{
		"bytes=abc-def",
		"items=0-99",
		"bytes=-",
		"bytes=",
	}

	for _, header := range tests {
		t.Run(header, func(t *testing.T) {
			h, id := newTestHandler(t, 1000)

			rec := get(h, "/api/stream/"+id, header)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := rec.Body.Len(); got != 1000 {
				t.Errorf("body length = %d, want full file", got)
			}
		})
	}
}

func TestStreamUnsatisfiableRange(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"start beyond size", "bytes=1000-"},
		{"start far beyond size", "bytes=99999-"},
		{"inverted", "bytes=200-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, id := newTestHandler(t, 1000)

			rec := get(h, "/api/stream/"+id, tt.header)

			if rec.Code != http.StatusRequestedRangeNotSatisfiable {
				t.Fatalf("status = %d, want 416", rec.Code)
			}
			if got := rec.Header().Get("Content-Range"); got != "bytes */1000" {
				t.Errorf("Content-Range = %q, want bytes */1000", got)
			}
		})
	}
}

func TestStreamInvalidMovieID(t *testing.T) {
	h, _ := newTestHandler(t, 10)

	rec := get(h, "/api/stream/not-an-object-id", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStreamUnknownMovie(t *testing.T) {
	h, _ := newTestHandler(t, 10)

	rec := get(h, "/api/stream/"+primitive.NewObjectID().Hex(), "bytes=0-5")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec.Header().Get("Content-Range") != "" {
		t.Error("error response leaked range headers")
	}
}

func TestStreamFileMissingOnDisk(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	movies := &fakeMovies{movies: map[string]*domain.Movie{
		id: {ID: id, FilePath: filepath.Join(t.TempDir(), "gone.mp4")},
	}}
	h := NewHandler(movies, zap.NewNop().Sugar(), nil, configs.StreamConfig{})
	router := chi.NewRouter()
	router.Get("/api/stream/{movieId}", h.StreamMovie)

	rec := get(router, "/api/stream/"+id, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStreamCORSHeadersAlwaysPresent(t *testing.T) {
	h, id := newTestHandler(t, 100)

	for name, rec := range map[string]*httptest.ResponseRecorder{
		"success": get(h, "/api/stream/"+id, ""),
		"invalid": get(h, "/api/stream/bogus", ""),
	} {
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("%s: Access-Control-Allow-Origin = %q, want *", name, got)
		}
		if got := rec.Header().Get("Cross-Origin-Resource-Policy"); got != "cross-origin" {
			t.Errorf("%s: Cross-Origin-Resource-Policy = %q", name, got)
		}
	}
}

func TestStreamThrottled(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	movies := &fakeMovies{movies: map[string]*domain.Movie{
		id: {ID: id, FilePath: writeTestFile(t, 2048)},
	}}
	cfg := configs.StreamConfig{BytesPerSecond: 1 << 20, Burst: 512}
	h := NewHandler(movies, zap.NewNop().Sugar(), nil, cfg)
	router := chi.NewRouter()
	router.Get("/api/stream/{movieId}", h.StreamMovie)

	rec := get(router, "/api/stream/"+id, "bytes=0-2047")

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Body.Len(); got != 2048 {
		t.Errorf("body length = %d, want 2048", got)
	}
}
