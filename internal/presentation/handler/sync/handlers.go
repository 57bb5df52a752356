package sync

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kinosync/kinosync/internal/domain"
	"github.com/kinosync/kinosync/internal/infrastructure/auth"
	"github.com/kinosync/kinosync/internal/infrastructure/metrics"
	"github.com/kinosync/kinosync/internal/infrastructure/ws"
)

type Handler struct {
	hub      *ws.Hub
	verifier *auth.Verifier
	logger   *zap.SugaredLogger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

func NewHandler(hub *ws.Hub, verifier *auth.Verifier, logger *zap.SugaredLogger, m *metrics.Metrics) *Handler {
	return &Handler{
		hub:      hub,
		verifier: verifier,
		logger:   logger,
		metrics:  m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is not checked: the socket carries no credentials of
			// its own and every privileged action re-checks the identity.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the connection and starts its pumps. A missing or
// invalid token does not reject the handshake; the connection proceeds
// anonymously and simply cannot drive playback.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var identity *domain.Identity
	if credential := auth.CredentialFromRequest(r); credential != "" {
		id, err := h.verifier.Verify(credential)
		if err != nil {
			h.logger.Warnw("websocket credential rejected, continuing anonymous", "error", err)
		} else {
			identity = id
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(conn, uuid.NewString(), identity, h.logger)

	if h.metrics != nil {
		h.metrics.Connections.Inc()
	}
	h.logger.Infow("websocket connected", "clientId", client.ID, "anonymous", identity == nil)

	go client.WritePump()
	go func() {
		// The request context dies once this handler returns, but the
		// connection outlives it. Lookups run against their own context.
		client.ReadPump(context.Background(), h.hub)
		if h.metrics != nil {
			h.metrics.Connections.Dec()
		}
		h.logger.Infow("websocket disconnected", "clientId", client.ID)
	}()
}
