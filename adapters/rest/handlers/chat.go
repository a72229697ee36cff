package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"todo-gateway/pkg/res"
)

type chatIn struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

type chatForward struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id,omitempty"`
	UserID         string  `json:"user_id"`
}

// Chat relays to the backend chat endpoint. The inbound body carries message
// and optional conversation id; the user id from the path is stitched in
// before forwarding. The reply is relayed opaquely.
func (rl *Relay) Chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("userId")
		if userID == "" {
			res.Error(w, "missing user id", http.StatusBadRequest)
			return
		}

		var in chatIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(in.Message) == "" {
			res.Error(w, "message must not be empty", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), rl.timeout)
		defer cancel()

		token, ok := rl.authorize(ctx, w, r)
		if !ok {
			return
		}

		body, err := json.Marshal(chatForward{
			Message:        in.Message,
			ConversationID: in.ConversationID,
			UserID:         userID,
		})
		if err != nil {
			rl.fail(w, http.StatusInternalServerError, "internal error", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rl.backendURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			rl.fail(w, http.StatusInternalServerError, "internal error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := rl.client.Do(req)
		if err != nil {
			rl.log.Error("chat backend unreachable", "error", err)
			rl.fail(w, http.StatusServiceUnavailable, "service unavailable", err)
			return
		}
		defer func() { _ = resp.Body.Close() }()

		res.Relay(w, resp.StatusCode, resp.Header.Get("Content-Type"), resp.Body)
	}
}
