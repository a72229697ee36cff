package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"todo-gateway/core"
	"todo-gateway/pkg/res"
)

func Register(mux *http.ServeMux, log *slog.Logger, relay *Relay, deps core.Deps, timeout time.Duration) {
	// ping
	mux.Handle("GET /api/ping", NewPingHandler(log, map[string]core.Pinger{
		"auth":    deps.Auth,
		"backend": deps.Backend,
	}, timeout))

	// todos, relayed with the cookie-to-bearer exchange
	mux.Handle("GET /api/todos", relay.ForwardList())
	mux.Handle("POST /api/todos", relay.Forward(staticPath("/api/todos")))
	mux.Handle("GET /api/todos/stats", relay.Forward(staticPath("/api/todos/stats")))
	mux.Handle("GET /api/todos/{id}", relay.Forward(todoPath))
	mux.Handle("PATCH /api/todos/{id}", relay.Forward(todoPath))
	mux.Handle("PUT /api/todos/{id}", relay.Forward(todoPath))
	mux.Handle("DELETE /api/todos/{id}", relay.Forward(todoPath))

	// chat
	mux.Handle("POST /api/chat/{userId}", relay.Chat())
}

func staticPath(p string) pathFunc {
	return func(*http.Request) (string, error) { return p, nil }
}

func todoPath(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: malformed todo id", core.ErrValidation)
	}
	return "/api/todos/" + id, nil
}

// ForwardList checks the pagination and filter parameters before relaying so
// a malformed query never reaches the backend.
func (rl *Relay) ForwardList() http.HandlerFunc {
	fwd := rl.Forward(staticPath("/api/todos"))
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if v := q.Get("skip"); v != "" {
			if n, err := strconv.Atoi(v); err != nil || n < 0 {
				res.Error(w, "invalid skip", http.StatusBadRequest)
				return
			}
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err != nil || n < 1 {
				res.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
		}
		if v := q.Get("is_complete"); v != "" {
			if _, err := strconv.ParseBool(v); err != nil {
				res.Error(w, "invalid is_complete", http.StatusBadRequest)
				return
			}
		}

		fwd(w, r)
	}
}
