package rooms

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kinosync/kinosync/internal/domain"
	"github.com/kinosync/kinosync/internal/infrastructure/auth"
	"github.com/kinosync/kinosync/internal/infrastructure/json"
)

type Handler struct {
	registry domain.RoomRegistry
	logger   *zap.SugaredLogger
}

func NewHandler(registry domain.RoomRegistry, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		json.WriteUnauthorizedError(w, "Authentication required")
		return
	}

	var req createRoomRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if req.MovieID == "" {
		json.WriteBadRequestError(w, "movieId is required")
		return
	}

	room, err := h.registry.Create(r.Context(), identity.UserID, req.HostName, req.MovieID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			json.WriteBadRequestError(w, "Invalid movie id")
		default:
			h.logger.Errorw("failed to create room", "hostId", identity.UserID, "movieId", req.MovieID, "error", err)
			json.WriteInternalError(w, err)
		}
		return
	}

	h.logger.Infow("room created", "roomId", room.ID, "hostId", room.HostID, "roomCode", room.RoomCode)
	json.Write(w, http.StatusCreated, room)
}

func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	if auth.IdentityFromContext(r.Context()) == nil {
		json.WriteUnauthorizedError(w, "Authentication required")
		return
	}

	room, err := h.registry.GetByID(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	json.Write(w, http.StatusOK, room)
}

// GetRoomByTokenHandler resolves an invite link. Public: the token itself
// is the capability.
func (h *Handler) GetRoomByTokenHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.registry.GetByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	json.Write(w, http.StatusOK, room)
}

func (h *Handler) GetRoomByCodeHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.registry.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	json.Write(w, http.StatusOK, room)
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		json.WriteNotFoundError(w, "Room not found")
	case errors.Is(err, domain.ErrInvalidID):
		json.WriteBadRequestError(w, "Invalid room id")
	default:
		h.logger.Errorw("room lookup failed", "error", err)
		json.WriteInternalError(w, err)
	}
}
