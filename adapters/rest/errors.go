package rest

import (
	"errors"
	"net/http"

	"todo-gateway/core"
	"todo-gateway/pkg/res"
)

// WriteErr maps the error taxonomy onto HTTP. Downstream rejections keep
// their original status and detail instead of collapsing to a generic 500.
func WriteErr(w http.ResponseWriter, err error) {
	var remote *core.RemoteError
	switch {
	case errors.As(err, &remote):
		msg := remote.Detail
		if msg == "" {
			msg = http.StatusText(remote.StatusCode)
		}
		res.Error(w, msg, remote.StatusCode)
	case errors.Is(err, core.ErrValidation):
		res.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrUnauthenticated):
		res.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, core.ErrForbidden):
		res.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, core.ErrNotFound):
		res.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, core.ErrUnavailable):
		res.Error(w, "service unavailable", http.StatusServiceUnavailable)
	default:
		res.Error(w, "internal error", http.StatusInternalServerError)
	}
}
