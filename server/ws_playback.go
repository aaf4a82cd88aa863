package server

import (
	"net/http"

	"TuneVault/core/auth"
	"TuneVault/logger"

	"github.com/gorilla/websocket"
)

var playbackUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsAck is sent back after each heartbeat frame so the client can tell a
// rejected snapshot from a dropped connection.
type wsAck struct {
	Status string `json:"status"`
	Code   int    `json:"code"`
	Error  string `json:"error,omitempty"`
}

// PlaybackSyncHandler accepts a websocket connection carrying periodic
// playback snapshots (the ~5s heartbeat while playing). Each frame goes
// through the same validation as the POST endpoint. A rejected frame is
// acked with its status but never closes the connection.
func (h *APIHandler) PlaybackSyncHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token query parameter is required", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ParseToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := playbackUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("[PlaybackSync] upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	logger.Info("[PlaybackSync] session opened", logger.Int64("userId", claims.UserID))

	for {
		var req savePlaybackRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("[PlaybackSync] read error", logger.ErrorField(err))
			}
			return
		}

		status, msg := h.savePlayback(r.Context(), claims.UserID, &req)
		ack := wsAck{Status: "saved", Code: status}
		if status != http.StatusOK {
			ack.Status = "rejected"
			ack.Error = msg
		}
		if err := conn.WriteJSON(ack); err != nil {
			logger.Warn("[PlaybackSync] ack write failed", logger.ErrorField(err))
			return
		}
	}
}
