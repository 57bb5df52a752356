package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kinosync/kinosync/internal/domain"
	"github.com/kinosync/kinosync/internal/infrastructure/configs"
	"github.com/kinosync/kinosync/internal/infrastructure/json"
	"github.com/kinosync/kinosync/internal/infrastructure/metrics"
	infrastream "github.com/kinosync/kinosync/internal/infrastructure/stream"
)

const copyChunkSize = 64 * 1024

type Handler struct {
	movies  domain.MovieRegistry
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	// limiter is shared across all stream requests. nil means unthrottled.
	limiter *rate.Limiter
}

func NewHandler(movies domain.MovieRegistry, logger *zap.SugaredLogger, m *metrics.Metrics, cfg configs.StreamConfig) *Handler {
	var limiter *rate.Limiter
	if cfg.BytesPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.BytesPerSecond
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSecond), burst)
	}

	return &Handler{
		movies:  movies,
		logger:  logger,
		metrics: m,
		limiter: limiter,
	}
}

// StreamMovie serves the movie file, honoring a single byte-range unit.
// The file is stat'd fresh on every request so a replaced or deleted file
// is picked up immediately.
func (h *Handler) StreamMovie(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)

	movieID := chi.URLParam(r, "movieId")
	if _, err := primitive.ObjectIDFromHex(movieID); err != nil {
		h.countRequest(http.StatusBadRequest)
		json.WriteBadRequestError(w, "Invalid movie id")
		return
	}

	movie, err := h.movies.Resolve(r.Context(), movieID)
	if err != nil || movie.FilePath == "" {
		h.countRequest(http.StatusNotFound)
		json.WriteNotFoundError(w, "Movie not found")
		return
	}

	info, err := os.Stat(movie.FilePath)
	if err != nil {
		h.logger.Warnw("movie file missing on disk", "movieId", movieID, "path", movie.FilePath, "error", err)
		h.countRequest(http.StatusNotFound)
		json.WriteNotFoundError(w, "Movie file not found")
		return
	}
	size := info.Size()

	writeStreamHeaders(w)

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		h.serveFull(w, movie.FilePath, size, r)
		return
	}

	span, err := parseRange(rangeHeader, size)
	if err != nil {
		// Unparseable Range headers get the whole file rather than an
		// error; some players send garbage before falling back.
		h.logger.Debugw("malformed range header, serving full file", "movieId", movieID, "range", rangeHeader)
		h.serveFull(w, movie.FilePath, size, r)
		return
	}

	if span.start >= size || span.start > span.end {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		h.countRequest(http.StatusRequestedRangeNotSatisfiable)
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	file, err := os.Open(movie.FilePath)
	if err != nil {
		h.logger.Errorw("failed to open movie file", "movieId", movieID, "path", movie.FilePath, "error", err)
		h.countRequest(http.StatusInternalServerError)
		json.WriteInternalError(w, err)
		return
	}
	defer file.Close()

	if _, err := file.Seek(span.start, io.SeekStart); err != nil {
		h.logger.Errorw("seek failed", "movieId", movieID, "offset", span.start, "error", err)
		h.countRequest(http.StatusInternalServerError)
		json.WriteInternalError(w, err)
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", span.start, span.end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(span.length(), 10))
	h.countRequest(http.StatusPartialContent)
	w.WriteHeader(http.StatusPartialContent)

	h.copyBody(w, io.LimitReader(file, span.length()), r)
}

func (h *Handler) serveFull(w http.ResponseWriter, path string, size int64, r *http.Request) {
	file, err := os.Open(path)
	if err != nil {
		h.logger.Errorw("failed to open movie file", "path", path, "error", err)
		h.countRequest(http.StatusInternalServerError)
		json.WriteInternalError(w, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	h.countRequest(http.StatusOK)
	w.WriteHeader(http.StatusOK)

	h.copyBody(w, file, r)
}

// copyBody streams src to the client in bounded chunks, pacing against
// the shared limiter when throttling is configured. A write error means
// the client went away; the copy stops and the error is logged once.
func (h *Handler) copyBody(w http.ResponseWriter, src io.Reader, r *http.Request) {
	if h.limiter != nil {
		src = &infrastream.ThrottledReader{Reader: src, Limiter: h.limiter, Ctx: r.Context()}
	}

	n, err := io.CopyBuffer(w, src, make([]byte, copyChunkSize))
	if h.metrics != nil && n > 0 {
		h.metrics.StreamBytes.Add(float64(n))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Warnw("stream aborted", "path", r.URL.Path, "written", n, "error", err)
	}
}

func (h *Handler) countRequest(status int) {
	if h.metrics != nil {
		h.metrics.StreamRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	}
}

// writeCORSHeaders applies the deliberately permissive cross-origin
// policy for media: the video element on any frontend origin must be able
// to fetch ranges directly. Set on every response, errors included.
func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Range, Content-Type")
	w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
}

func writeStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Accept-Ranges", "bytes")
}
