package core

import "context"

type Pinger interface {
	Ping(ctx context.Context) error
}

// TodosAPI is the downstream task store as the engine sees it: already
// authenticated, already translated to the local shape.
type TodosAPI interface {
	Pinger

	ListTodos(ctx context.Context, f ListFilter) ([]Task, int, error)
	GetTodo(ctx context.Context, id string) (Task, error)
	CreateTodo(ctx context.Context, title string, description *string) (Task, error)
	SetTodoStatus(ctx context.Context, id string, complete bool) (Task, error)
	UpdateTodoFields(ctx context.Context, id string, p TaskPatch) (Task, error)
	DeleteTodo(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}

// AuthProvider resolves sessions and mints bearer tokens against the identity
// provider. cookieHeader is the raw Cookie header of the caller; the provider
// never sees anything else of the inbound request.
type AuthProvider interface {
	Pinger

	ResolveSession(ctx context.Context, cookieHeader string) (User, bool, error)
	MintToken(ctx context.Context, cookieHeader string) (string, error)
}

// TokenSource hands out a usable bearer token or fails with
// ErrUnauthenticated. Implemented by the session store.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Deps struct {
	Auth    AuthProvider
	Backend Pinger
}
