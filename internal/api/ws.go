package api

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/tripweaver/internal/auth"
	"github.com/neexbeast/tripweaver/internal/workspace"
)

const (
	writeWait    = 5 * time.Second
	pingInterval = 30 * time.Second
)

var errWorkspaceClosed = errors.New("workspace unmounted")

// sessionMessage is pushed to the client whenever the session view changes.
type sessionMessage struct {
	Type   string           `json:"type"`
	Screen workspace.Screen `json:"screen"`
	Email  string           `json:"email,omitempty"`
}

func newSessionMessage(s *auth.Session) sessionMessage {
	if s == nil {
		return sessionMessage{Type: "session", Screen: workspace.ScreenAuth}
	}
	return sessionMessage{Type: "session", Screen: workspace.ScreenPlanner, Email: s.Email}
}

// Events handles GET /api/v1/workspaces/{id}/events.
// Streams the current session view, then every change, until either side closes.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "workspace_id", ws.ID(), "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := ws.Session().Watch()
	defer cancel()

	g, ctx := errgroup.WithContext(r.Context())

	// Reads only to notice the peer going away.
	g.Go(func() error {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		// Unblocks the reader once writing stops.
		defer conn.Close()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		if err := writeMessage(conn, newSessionMessage(ws.Session().Current())); err != nil {
			return err
		}

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case s, ok := <-updates:
				if !ok {
					msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, errWorkspaceClosed.Error())
					_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
					return errWorkspaceClosed
				}
				if err := writeMessage(conn, newSessionMessage(s)); err != nil {
					return err
				}
			case <-ticker.C:
				// An open stream keeps its workspace from going idle.
				h.workspaces.Get(ws.ID())
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return err
				}
			}
		}
	})

	err = g.Wait()
	h.log.Debug("event stream closed", "workspace_id", ws.ID(), "err", err)
}

func writeMessage(conn *websocket.Conn, msg sessionMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// checkOrigin accepts same-origin pages, requests without an Origin header and
// the configured origins.
func (h *Handlers) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(h.settings.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}
