package core_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"todo-gateway/core"
)

// fakeAPI implements core.TodosAPI in memory and counts calls per method so
// tests can assert which operations reached the network.
type fakeAPI struct {
	mu sync.Mutex

	order []string
	todos map[string]core.Task

	calls map[string]int

	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		todos: make(map[string]core.Task),
		calls: make(map[string]int),
	}
}

func (f *fakeAPI) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeAPI) seed(title string, desc *string, status core.TaskStatus, createdAt time.Time) core.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := core.Task{
		ID:        uuid.NewString(),
		OwnerID:   "owner-1",
		Title:     title,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if desc != nil {
		d := *desc
		t.Description = &d
	}
	f.todos[t.ID] = t
	f.order = append(f.order, t.ID)
	return t
}

func (f *fakeAPI) Ping(context.Context) error { return nil }

func (f *fakeAPI) ListTodos(context.Context, core.ListFilter) ([]core.Task, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["ListTodos"]++
	if f.listErr != nil {
		return nil, 0, f.listErr
	}

	out := make([]core.Task, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.todos[id])
	}
	return out, len(out), nil
}

func (f *fakeAPI) GetTodo(_ context.Context, id string) (core.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["GetTodo"]++
	t, ok := f.todos[id]
	if !ok {
		return core.Task{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeAPI) CreateTodo(_ context.Context, title string, description *string) (core.Task, error) {
	f.mu.Lock()

	f.calls["CreateTodo"]++
	if f.createErr != nil {
		f.mu.Unlock()
		return core.Task{}, f.createErr
	}
	f.mu.Unlock()

	return f.seed(title, description, core.StatusPending, time.Now()), nil
}

func (f *fakeAPI) SetTodoStatus(_ context.Context, id string, complete bool) (core.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["SetTodoStatus"]++
	if f.updateErr != nil {
		return core.Task{}, f.updateErr
	}

	t, ok := f.todos[id]
	if !ok {
		return core.Task{}, core.ErrNotFound
	}
	t.Status = core.StatusPending
	if complete {
		t.Status = core.StatusCompleted
	}
	t.UpdatedAt = time.Now()
	f.todos[id] = t
	return t, nil
}

func (f *fakeAPI) UpdateTodoFields(_ context.Context, id string, p core.TaskPatch) (core.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["UpdateTodoFields"]++
	if f.updateErr != nil {
		return core.Task{}, f.updateErr
	}

	t, ok := f.todos[id]
	if !ok {
		return core.Task{}, core.ErrNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	t.UpdatedAt = time.Now()
	f.todos[id] = t
	return t, nil
}

func (f *fakeAPI) DeleteTodo(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["DeleteTodo"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}

	if _, ok := f.todos[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.todos, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) Stats(context.Context) (core.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["Stats"]++
	var st core.Stats
	for _, t := range f.todos {
		if t.Status == core.StatusCompleted {
			st.Completed++
		} else {
			st.Pending++
		}
	}
	st.Total = st.Pending + st.Completed
	return st, nil
}

var _ core.TodosAPI = (*fakeAPI)(nil)
