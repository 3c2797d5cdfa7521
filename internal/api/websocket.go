package api

import (
	"net/http"
	"net/url"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/auth"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/ws"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func (d Dependencies) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(d.CORSOrigins, r.Header.Get("Origin"))
		},
	}
}

// originAllowed accepts a missing origin (non-browser clients), a
// wildcard, or an exact match on scheme and host
func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == u.Scheme+"://"+u.Host {
			return true
		}
	}
	return false
}

func (d Dependencies) wsHandler(w http.ResponseWriter, r *http.Request) {
	if d.Hub == nil {
		d.Log.Error("WebSocket hub not initialized")
		http.Error(w, "WebSocket hub not initialized", http.StatusInternalServerError)
		return
	}

	owner := auth.GetOwner(r.Context())
	upgrader := d.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.Log.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	d.Log.Info("WebSocket connected",
		zap.String("remote", r.RemoteAddr),
		zap.String("owner", owner))

	wsConn := ws.NewConn(conn, d.Hub, owner)
	d.Hub.Register(wsConn)

	go wsConn.WritePump()
	go wsConn.ReadPump()
}
