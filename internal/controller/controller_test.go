package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/model"
	"github.com/onejobco/onejob/internal/store"
)

// fakeGateway records calls and serves a canned task list.
type fakeGateway struct {
	mu        sync.Mutex
	tasks     []model.Task
	listErr   error
	updateErr error

	listCalls   int
	updateCalls []gateway.TaskUpdate
	createCalls []string
	subCalls    []string
	deleteCalls []string
}

func (f *fakeGateway) ListTasks(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Task(nil), f.tasks...), nil
}

func (f *fakeGateway) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, title)
	task := model.NewTask("created", title, description, len(f.tasks)+1)
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeGateway) UpdateTask(ctx context.Context, id string, update gateway.TaskUpdate) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return model.Task{}, f.updateErr
	}
	f.updateCalls = append(f.updateCalls, update)
	return model.Task{ID: id}, nil
}

func (f *fakeGateway) CreateSubstack(ctx context.Context, taskID, name string) (model.Substack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subCalls = append(f.subCalls, name)
	return model.NewSubstack("sub", name), nil
}

func (f *fakeGateway) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	return nil
}

func (f *fakeGateway) counts() (list, update int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, len(f.updateCalls)
}

func active(id string, order int) model.Task {
	return model.Task{ID: id, Title: id, Status: model.StatusTodo, CreatedAt: time.Now(), SortOrder: order}
}

func newController(gw gateway.Gateway) (*Controller, *store.Store) {
	st := store.New()
	return New(gw, st), st
}

func TestRefresh(t *testing.T) {
	t.Run("success replaces snapshot and reaches ready", func(t *testing.T) {
		gw := &fakeGateway{tasks: []model.Task{active("a", 1), active("b", 2)}}
		c, _ := newController(gw)

		if err := c.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		if c.State() != StateReady {
			t.Errorf("state = %d, want ready", c.State())
		}

		render := c.Render(store.TopLevel)
		if len(render.Active) != 2 {
			t.Fatalf("active = %d, want 2", len(render.Active))
		}
		if render.Loading || render.Err != "" {
			t.Errorf("render = loading %v err %q, want settled", render.Loading, render.Err)
		}
	})

	t.Run("failure clears the list and sets the error", func(t *testing.T) {
		gw := &fakeGateway{tasks: []model.Task{active("a", 1)}}
		c, _ := newController(gw)
		if err := c.Refresh(context.Background()); err != nil {
			t.Fatal(err)
		}

		gw.mu.Lock()
		gw.listErr = errors.New("connection refused")
		gw.mu.Unlock()

		if err := c.Refresh(context.Background()); err == nil {
			t.Fatal("expected an error")
		}
		render := c.Render(store.TopLevel)
		if len(render.Active) != 0 || len(render.Completed) != 0 {
			t.Errorf("lists not cleared: %d active, %d completed", len(render.Active), len(render.Completed))
		}
		if render.Err == "" {
			t.Error("error message not retained")
		}
		if render.Loading {
			t.Error("still loading after failure")
		}
		if c.State() != StateError {
			t.Errorf("state = %d, want error", c.State())
		}
	})
}

func TestComplete(t *testing.T) {
	t.Run("top-level completion writes through and reloads", func(t *testing.T) {
		gw := &fakeGateway{tasks: []model.Task{active("a", 1)}}
		c, _ := newController(gw)

		if err := c.Complete(context.Background(), store.TopLevel, "a"); err != nil {
			t.Fatalf("Complete: %v", err)
		}

		gw.mu.Lock()
		defer gw.mu.Unlock()
		if len(gw.updateCalls) != 1 {
			t.Fatalf("update calls = %d, want 1", len(gw.updateCalls))
		}
		u := gw.updateCalls[0]
		if u.Status == nil || *u.Status != model.StatusDone {
			t.Errorf("update status = %v, want done", u.Status)
		}
		if u.Deferral {
			t.Error("completion must not carry the deferral flag")
		}
		if gw.listCalls != 1 {
			t.Errorf("list calls = %d, want 1 reload", gw.listCalls)
		}
	})

	t.Run("substack completion never touches the gateway", func(t *testing.T) {
		parent := active("p", 1)
		sub := model.NewSubstack("s1", "Steps")
		sub.Tasks = []model.Task{active("st1", 1)}
		parent.Substacks = []model.Substack{sub}

		gw := &fakeGateway{}
		c, st := newController(gw)
		st.ReplaceAll([]model.Task{parent})

		if err := c.Complete(context.Background(), store.SubstackScope("s1"), "st1"); err != nil {
			t.Fatalf("Complete: %v", err)
		}

		list, update := gw.counts()
		if list != 0 || update != 0 {
			t.Errorf("gateway touched: %d list, %d update calls", list, update)
		}
		done := st.CompletedTasks(store.SubstackScope("s1"))
		if len(done) != 1 || done[0].ID != "st1" {
			t.Errorf("substack task not completed locally")
		}
	})

	t.Run("write failure leaves the snapshot alone", func(t *testing.T) {
		gw := &fakeGateway{tasks: []model.Task{active("a", 1)}}
		c, st := newController(gw)
		if err := c.Refresh(context.Background()); err != nil {
			t.Fatal(err)
		}

		gw.mu.Lock()
		gw.updateErr = errors.New("boom")
		gw.mu.Unlock()

		if err := c.Complete(context.Background(), store.TopLevel, "a"); err == nil {
			t.Fatal("expected an error")
		}
		if got := st.ActiveTasks(store.TopLevel); len(got) != 1 {
			t.Errorf("snapshot changed after failed write: %d tasks", len(got))
		}
		if c.State() == StateError {
			t.Error("failed write must not flip the load state to error")
		}
	})
}

func TestDefer(t *testing.T) {
	t.Run("top-level deferral sends the deferral flag", func(t *testing.T) {
		gw := &fakeGateway{tasks: []model.Task{active("a", 1)}}
		c, _ := newController(gw)

		if err := c.Defer(context.Background(), store.TopLevel, "a"); err != nil {
			t.Fatalf("Defer: %v", err)
		}

		gw.mu.Lock()
		defer gw.mu.Unlock()
		if len(gw.updateCalls) != 1 || !gw.updateCalls[0].Deferral {
			t.Fatalf("update calls = %+v, want one deferral", gw.updateCalls)
		}
		if gw.updateCalls[0].Status != nil {
			t.Error("deferral must not carry a status write")
		}
	})

	t.Run("substack deferral reorders locally", func(t *testing.T) {
		parent := active("p", 1)
		sub := model.NewSubstack("s1", "Steps")
		sub.Tasks = []model.Task{active("a", 1), active("b", 2)}
		parent.Substacks = []model.Substack{sub}

		gw := &fakeGateway{}
		c, st := newController(gw)
		st.ReplaceAll([]model.Task{parent})

		if err := c.Defer(context.Background(), store.SubstackScope("s1"), "a"); err != nil {
			t.Fatalf("Defer: %v", err)
		}
		got := st.ActiveTasks(store.SubstackScope("s1"))
		if got[0].ID != "b" || got[1].ID != "a" {
			t.Errorf("order = [%s %s], want [b a]", got[0].ID, got[1].ID)
		}
		if list, update := gw.counts(); list != 0 || update != 0 {
			t.Errorf("gateway touched for a substack deferral")
		}
	})
}

func TestAddTask(t *testing.T) {
	t.Run("top-level add goes remote then reloads", func(t *testing.T) {
		gw := &fakeGateway{}
		c, st := newController(gw)

		if err := c.AddTask(context.Background(), store.TopLevel, "Buy milk", ""); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
		if got := st.ActiveTasks(store.TopLevel); len(got) != 1 || got[0].Title != "Buy milk" {
			t.Fatalf("active after add = %+v", got)
		}
	})

	t.Run("substack add stays local", func(t *testing.T) {
		parent := active("p", 1)
		parent.Substacks = []model.Substack{model.NewSubstack("s1", "Steps")}

		gw := &fakeGateway{}
		c, st := newController(gw)
		st.ReplaceAll([]model.Task{parent})

		if err := c.AddTask(context.Background(), store.SubstackScope("s1"), "Step one", ""); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
		got := st.ActiveTasks(store.SubstackScope("s1"))
		if len(got) != 1 || got[0].SortOrder != 1 {
			t.Fatalf("substack active = %+v", got)
		}
		if list, _ := gw.counts(); list != 0 {
			t.Error("gateway touched for a substack add")
		}
	})
}

func TestReopen(t *testing.T) {
	t.Run("writes todo status and reloads", func(t *testing.T) {
		gw := &fakeGateway{tasks: []model.Task{active("a", 1)}}
		c, _ := newController(gw)

		if err := c.Reopen(context.Background(), store.TopLevel, "a"); err != nil {
			t.Fatalf("Reopen: %v", err)
		}

		gw.mu.Lock()
		defer gw.mu.Unlock()
		if len(gw.updateCalls) != 1 {
			t.Fatalf("update calls = %d, want 1", len(gw.updateCalls))
		}
		u := gw.updateCalls[0]
		if u.Status == nil || *u.Status != model.StatusTodo {
			t.Errorf("update status = %v, want todo", u.Status)
		}
		if u.Deferral {
			t.Error("reopen must not carry the deferral flag")
		}
		if gw.listCalls != 1 {
			t.Errorf("list calls = %d, want 1 reload", gw.listCalls)
		}
	})

	t.Run("rejected in substack scope", func(t *testing.T) {
		gw := &fakeGateway{}
		c, _ := newController(gw)
		if err := c.Reopen(context.Background(), store.SubstackScope("s1"), "a"); !errors.Is(err, gateway.ErrNotSupported) {
			t.Errorf("err = %v, want ErrNotSupported", err)
		}
	})
}

func TestScopeCapability(t *testing.T) {
	gw := &fakeGateway{}
	c, _ := newController(gw)
	sub := store.SubstackScope("s1")

	if err := c.CreateSubstack(context.Background(), sub, "t", "Nested"); !errors.Is(err, gateway.ErrNotSupported) {
		t.Errorf("nested substack err = %v, want ErrNotSupported", err)
	}
	title := "New"
	if err := c.UpdateFields(context.Background(), sub, "t", &title, nil); !errors.Is(err, gateway.ErrNotSupported) {
		t.Errorf("substack field edit err = %v, want ErrNotSupported", err)
	}
	if err := c.Remove(context.Background(), sub, "t"); !errors.Is(err, gateway.ErrNotSupported) {
		t.Errorf("substack delete err = %v, want ErrNotSupported", err)
	}
}

// gatedGateway hands each ListTasks call its own response channel so a test
// can decide which in-flight reload resolves first.
type gatedGateway struct {
	mu        sync.Mutex
	calls     int
	started   chan int
	responses []chan []model.Task
}

func (g *gatedGateway) ListTasks(ctx context.Context) ([]model.Task, error) {
	g.mu.Lock()
	i := g.calls
	g.calls++
	ch := g.responses[i]
	g.mu.Unlock()
	g.started <- i
	return <-ch, nil
}

func (g *gatedGateway) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	return model.Task{}, nil
}
func (g *gatedGateway) UpdateTask(ctx context.Context, id string, update gateway.TaskUpdate) (model.Task, error) {
	return model.Task{}, nil
}
func (g *gatedGateway) CreateSubstack(ctx context.Context, taskID, name string) (model.Substack, error) {
	return model.Substack{}, nil
}
func (g *gatedGateway) DeleteTask(ctx context.Context, id string) error { return nil }

func TestStaleReloadDiscarded(t *testing.T) {
	gw := &gatedGateway{
		started:   make(chan int, 2),
		responses: []chan []model.Task{make(chan []model.Task), make(chan []model.Task)},
	}
	c, st := newController(gw)

	var wg sync.WaitGroup
	wg.Add(2)

	// First reload starts and blocks inside the gateway.
	go func() {
		defer wg.Done()
		_ = c.Refresh(context.Background())
	}()
	<-gw.started

	// Second reload starts while the first is still in flight.
	go func() {
		defer wg.Done()
		_ = c.Refresh(context.Background())
	}()
	<-gw.started

	// The newer reload resolves first, then the stale one limps home.
	gw.responses[1] <- []model.Task{active("fresh", 1)}
	gw.responses[0] <- []model.Task{active("stale", 1)}
	wg.Wait()

	got := st.ActiveTasks(store.TopLevel)
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("snapshot = %+v, want the fresh reload", got)
	}
}

// The stamp check and the snapshot swap must be one atomic step: an older
// result that passes its check while a newer one is racing in behind it must
// not be the last write. Releasing the older response first and the newer one
// right behind it, repeatedly, exercises that window.
func TestReloadApplyOrder(t *testing.T) {
	for i := 0; i < 200; i++ {
		gw := &gatedGateway{
			started:   make(chan int, 2),
			responses: []chan []model.Task{make(chan []model.Task), make(chan []model.Task)},
		}
		c, st := newController(gw)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Refresh(context.Background())
		}()
		<-gw.started
		go func() {
			defer wg.Done()
			_ = c.Refresh(context.Background())
		}()
		<-gw.started

		gw.responses[0] <- []model.Task{active("stale", 1)}
		gw.responses[1] <- []model.Task{active("fresh", 1)}
		wg.Wait()

		got := st.ActiveTasks(store.TopLevel)
		if len(got) != 1 || got[0].ID != "fresh" {
			t.Fatalf("iteration %d: snapshot = %+v, want the fresh reload", i, got)
		}
	}
}
