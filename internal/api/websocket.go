package api

import (
	"net/http"
)

// WebSocketHandler upgrades the notification connection and hands it to
// the relay.
func (a *API) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if a.Relay == nil {
		writeError(w, http.StatusInternalServerError, "notification relay not initialized")
		return
	}
	a.Relay.HandleWebSocket(w, r)
}
