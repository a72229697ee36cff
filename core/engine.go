package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Engine owns the local copy of the user's tasks. Every mutating call ends in
// a full refresh instead of patching the collection locally, so the local
// ordering always matches whatever the server last returned. Overlapping
// calls are not sequenced: the last response to land wins.
type Engine struct {
	api TodosAPI

	mu      sync.RWMutex
	tasks   []Task
	loading bool
	lastErr error
	filter  ViewFilter
	sortBy  ViewSort
}

func NewEngine(api TodosAPI) *Engine {
	return &Engine{
		api:    api,
		tasks:  []Task{},
		filter: FilterAll,
		sortBy: SortCreatedAt,
	}
}

func (e *Engine) begin() {
	e.mu.Lock()
	e.lastErr = nil
	e.loading = true
	e.mu.Unlock()
}

func (e *Engine) fail(err error) error {
	e.mu.Lock()
	e.lastErr = err
	e.loading = false
	e.mu.Unlock()
	return err
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed task id %q", ErrValidation, id)
	}
	return nil
}

// Refresh replaces the collection wholesale with the server's current view.
// A failed refresh keeps the previous collection: stale beats empty.
func (e *Engine) Refresh(ctx context.Context) error {
	e.begin()

	items, _, err := e.api.ListTodos(ctx, ListFilter{})
	if err != nil {
		return e.fail(err)
	}

	e.mu.Lock()
	e.tasks = items
	e.loading = false
	e.mu.Unlock()
	return nil
}

// GetByID is a read-through fetch. It never populates the collection, so a
// single-item read cannot disagree with bulk state about ordering.
func (e *Engine) GetByID(ctx context.Context, id string) (Task, error) {
	if err := validID(id); err != nil {
		return Task{}, e.fail(err)
	}

	e.begin()

	t, err := e.api.GetTodo(ctx, id)
	if err != nil {
		return Task{}, e.fail(err)
	}

	e.mu.Lock()
	e.loading = false
	e.mu.Unlock()
	return t, nil
}

func (e *Engine) Create(ctx context.Context, title string, description *string) (Task, error) {
	if strings.TrimSpace(title) == "" {
		return Task{}, e.fail(fmt.Errorf("%w: title must not be empty", ErrValidation))
	}

	e.begin()

	created, err := e.api.CreateTodo(ctx, title, description)
	if err != nil {
		return Task{}, e.fail(err)
	}

	if err := e.Refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateStatus sends only the completion flag. Title/description changes go
// through UpdateFields; the backend rejects mixed payloads.
func (e *Engine) UpdateStatus(ctx context.Context, id string, status TaskStatus) (Task, error) {
	if !status.Valid() {
		return Task{}, e.fail(fmt.Errorf("%w: status must be %q or %q", ErrValidation, StatusPending, StatusCompleted))
	}
	if err := validID(id); err != nil {
		return Task{}, e.fail(err)
	}

	e.begin()

	updated, err := e.api.SetTodoStatus(ctx, id, status == StatusCompleted)
	if err != nil {
		return Task{}, e.fail(err)
	}

	if err := e.Refresh(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

func (e *Engine) UpdateFields(ctx context.Context, id string, p TaskPatch) (Task, error) {
	if p.Empty() {
		return Task{}, e.fail(fmt.Errorf("%w: at least one of title or description is required", ErrValidation))
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Task{}, e.fail(fmt.Errorf("%w: title must not be empty", ErrValidation))
	}
	if err := validID(id); err != nil {
		return Task{}, e.fail(err)
	}

	e.begin()

	updated, err := e.api.UpdateTodoFields(ctx, id, p)
	if err != nil {
		return Task{}, e.fail(err)
	}

	if err := e.Refresh(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// Delete is irreversible; there is no soft delete on the backend.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return e.fail(err)
	}

	e.begin()

	if err := e.api.DeleteTodo(ctx, id); err != nil {
		return e.fail(err)
	}

	return e.Refresh(ctx)
}

func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	e.begin()

	st, err := e.api.Stats(ctx)
	if err != nil {
		return Stats{}, e.fail(err)
	}

	e.mu.Lock()
	e.loading = false
	e.mu.Unlock()
	return st, nil
}

func (e *Engine) SetFilter(f ViewFilter) error {
	if !f.Valid() {
		return fmt.Errorf("%w: unknown filter %q", ErrValidation, f)
	}
	e.mu.Lock()
	e.filter = f
	e.mu.Unlock()
	return nil
}

func (e *Engine) SetSort(s ViewSort) error {
	if !s.Valid() {
		return fmt.Errorf("%w: unknown sort %q", ErrValidation, s)
	}
	e.mu.Lock()
	e.sortBy = s
	e.mu.Unlock()
	return nil
}

// Tasks returns a copy of the base collection in server order.
func (e *Engine) Tasks() []Task {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Task(nil), e.tasks...)
}

// FilteredAndSorted recomputes the derived view from the current collection
// and the current selectors on every call.
func (e *Engine) FilteredAndSorted() []Task {
	e.mu.RLock()
	tasks, filter, sortBy := e.tasks, e.filter, e.sortBy
	e.mu.RUnlock()
	return DeriveView(tasks, filter, sortBy)
}

func (e *Engine) Loading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}
