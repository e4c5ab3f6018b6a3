package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	demo, err := gateway.OpenDemo(filepath.Join(t.TempDir(), "demo.db"))
	if err != nil {
		t.Fatalf("open demo store: %v", err)
	}
	t.Cleanup(func() { demo.Close() })
	return New(demo)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) model.Task {
	t.Helper()
	var task model.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return task
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestListTasksEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/tasks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var tasks []model.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(tasks) == 0 {
		t.Fatal("expected seeded tasks")
	}

	seenDone := false
	for _, task := range tasks {
		if task.Completed {
			seenDone = true
		} else if seenDone {
			t.Fatal("active task listed after a completed one")
		}
	}
}

func TestCreateTaskEndpoint(t *testing.T) {
	s := newTestServer(t)

	t.Run("appends to the end of the queue", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/tasks", createTaskRequest{
			Title:       "Write release notes",
			Description: "v1.2",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		task := decodeTask(t, rec)
		if task.ID == "" {
			t.Fatal("expected a generated id")
		}
		if task.Status != model.StatusTodo {
			t.Fatalf("status = %q, want todo", task.Status)
		}

		rec = doJSON(t, s, http.MethodGet, "/tasks", nil)
		var tasks []model.Task
		if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
			t.Fatalf("decode tasks: %v", err)
		}
		last := ""
		for _, existing := range tasks {
			if !existing.Completed {
				last = existing.ID
			}
		}
		if last != task.ID {
			t.Fatalf("new task is not last in the active queue")
		}
	})

	t.Run("rejects empty title", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/tasks", createTaskRequest{Title: "  "})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestGetTaskEndpoint(t *testing.T) {
	s := newTestServer(t)

	created := decodeTask(t, doJSON(t, s, http.MethodPost, "/tasks",
		createTaskRequest{Title: "Find me"}))

	rec := doJSON(t, s, http.MethodGet, "/tasks/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeTask(t, rec); got.Title != "Find me" {
		t.Fatalf("title = %q", got.Title)
	}

	rec = doJSON(t, s, http.MethodGet, "/tasks/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateTaskEndpoint(t *testing.T) {
	s := newTestServer(t)

	created := decodeTask(t, doJSON(t, s, http.MethodPost, "/tasks",
		createTaskRequest{Title: "Ship it"}))

	t.Run("completion stamps completed_at", func(t *testing.T) {
		done := model.StatusDone
		rec := doJSON(t, s, http.MethodPut, "/tasks/"+created.ID,
			gateway.TaskUpdate{Status: &done})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		task := decodeTask(t, rec)
		if task.Status != model.StatusDone || !task.Completed {
			t.Fatalf("task not completed: status=%q completed=%v", task.Status, task.Completed)
		}
		if task.CompletedAt == nil {
			t.Fatal("completed_at not stamped")
		}
	})

	t.Run("deferral moves to end and counts", func(t *testing.T) {
		first := decodeTask(t, doJSON(t, s, http.MethodPost, "/tasks",
			createTaskRequest{Title: "First"}))
		decodeTask(t, doJSON(t, s, http.MethodPost, "/tasks",
			createTaskRequest{Title: "Second"}))

		rec := doJSON(t, s, http.MethodPut, "/tasks/"+first.ID,
			gateway.TaskUpdate{Deferral: true})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		task := decodeTask(t, rec)
		if task.DeferralCount != 1 {
			t.Fatalf("deferral_count = %d, want 1", task.DeferralCount)
		}
		if task.DeferredAt == nil {
			t.Fatal("deferred_at not stamped")
		}
		if task.SortOrder <= first.SortOrder {
			t.Fatalf("sort_order = %d, want > %d", task.SortOrder, first.SortOrder)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, "/tasks/nope", gateway.TaskUpdate{Deferral: true})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestDeleteTaskEndpoint(t *testing.T) {
	s := newTestServer(t)

	created := decodeTask(t, doJSON(t, s, http.MethodPost, "/tasks",
		createTaskRequest{Title: "Doomed"}))

	rec := doJSON(t, s, http.MethodDelete, "/tasks/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	// retrying the delete is safe
	rec = doJSON(t, s, http.MethodDelete, "/tasks/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("repeat status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/tasks/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 after delete", rec.Code)
	}
}

func TestCreateSubstackEndpoint(t *testing.T) {
	s := newTestServer(t)

	created := decodeTask(t, doJSON(t, s, http.MethodPost, "/tasks",
		createTaskRequest{Title: "Parent"}))

	rec := doJSON(t, s, http.MethodPost, "/tasks/"+created.ID+"/substacks",
		createSubstackRequest{Name: "Subtasks"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var sub model.Substack
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode substack: %v", err)
	}
	if sub.Name != "Subtasks" || sub.ID == "" {
		t.Fatalf("substack = %+v", sub)
	}

	t.Run("duplicate name", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/tasks/"+created.ID+"/substacks",
			createSubstackRequest{Name: "Subtasks"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/tasks/nope/substacks",
			createSubstackRequest{Name: "Orphan"})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}
