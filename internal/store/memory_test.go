package store

import (
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/runboard/internal/controller"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	snap := store.Snapshot()
	if snap.Revision != 0 {
		t.Errorf("Revision = %v, want 0", snap.Revision)
	}
	if snap.Controls != controller.DefaultControls() {
		t.Errorf("Controls = %+v, want defaults", snap.Controls)
	}
	if snap.Logs.Placeholder != controller.LogsPlaceholder {
		t.Errorf("Logs.Placeholder = %q, want %q", snap.Logs.Placeholder, controller.LogsPlaceholder)
	}
	if snap.Notice != nil {
		t.Errorf("Notice = %+v, want nil", snap.Notice)
	}
}

func TestMemoryStore_Render(t *testing.T) {
	store := NewMemoryStore()

	store.RenderStatus(controller.StatusView{Running: true, Label: controller.LabelRunning, SuccessRate: 80})
	store.RenderLogs(controller.LogsView{Lines: []string{"line"}})
	store.RenderControls(controller.Controls{StopEnabled: true, StartLabel: "Start", StopLabel: "Stop"})

	snap := store.Snapshot()
	if snap.Revision != 3 {
		t.Errorf("Revision = %v, want 3", snap.Revision)
	}
	if !snap.Status.Running || snap.Status.SuccessRate != 80 {
		t.Errorf("Status = %+v", snap.Status)
	}
	if len(snap.Logs.Lines) != 1 || snap.Logs.Lines[0] != "line" {
		t.Errorf("Logs = %+v", snap.Logs)
	}
	if !snap.Controls.StopEnabled || snap.Controls.StartEnabled {
		t.Errorf("Controls = %+v", snap.Controls)
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("UpdatedAt is zero")
	}
}

func TestMemoryStore_NotifySequence(t *testing.T) {
	store := NewMemoryStore()

	store.Notify(controller.Notice{Level: controller.NoticeWarning, Message: "already running"})
	first := store.Snapshot().Notice
	store.Notify(controller.Notice{Level: controller.NoticeWarning, Message: "already running"})
	second := store.Snapshot().Notice

	if first == nil || second == nil {
		t.Fatal("Notice = nil after Notify")
	}
	if second.Seq <= first.Seq {
		t.Errorf("Seq did not increase: %d then %d", first.Seq, second.Seq)
	}
	if second.Level != controller.NoticeWarning || second.Message != "already running" {
		t.Errorf("Notice = %+v", *second)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	// update should send to subscriber
	go func() {
		store.RenderStatus(controller.StatusView{Label: controller.LabelError})
	}()

	select {
	case d := <-ch:
		if d.Status.Label != controller.LabelError {
			t.Errorf("received Label = %v, want %v", d.Status.Label, controller.LabelError)
		}
		if d.Revision != 1 {
			t.Errorf("received Revision = %v, want 1", d.Revision)
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Listen()

	// update should fanout to all subscribers
	go func() {
		store.RenderLogs(controller.LogsView{Lines: []string{"x"}})
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)
	store.Unsubscribe(ch) // second call is a no-op

	// channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_ViewerHook(t *testing.T) {
	store := NewMemoryStore()

	var mu sync.Mutex
	var counts []int
	store.OnViewersChanged(func(n int) {
		mu.Lock()
		counts = append(counts, n)
		mu.Unlock()
	})

	v1 := store.Subscribe()
	v2 := store.Subscribe()
	l := store.Listen() // listeners are not viewers

	if got := store.Viewers(); got != 2 {
		t.Errorf("Viewers() = %d, want 2", got)
	}

	store.Unsubscribe(v1)
	store.Unsubscribe(l)
	store.Unsubscribe(v2)
	store.Unsubscribe(v2)

	if got := store.Viewers(); got != 0 {
		t.Errorf("Viewers() = %d, want 0", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []int{1, 2, 1, 0}
	if len(counts) != len(want) {
		t.Fatalf("hook calls = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("hook calls = %v, want %v", counts, want)
			break
		}
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()

	// create a subscriber but don't read from it
	_ = store.Subscribe()

	// create another subscriber that reads
	ch2 := store.Subscribe()

	done := make(chan bool)

	go func() {
		// this should not block even though ch1 is not being read
		for i := 0; i < 200; i++ {
			store.RenderControls(controller.DefaultControls())
		}
		done <- true
	}()

	// drain ch2
	go func() {
		for range ch2 {
		}
	}()

	select {
	case <-done:
		// expected - updates completed without blocking
	case <-time.After(2 * time.Second):
		t.Error("render blocked on slow subscriber")
	}

	if got := store.Snapshot().Revision; got != 200 {
		t.Errorf("Revision = %d, want 200", got)
	}
}

func TestMemoryStore_RevisionsArriveInOrder(t *testing.T) {
	store := NewMemoryStore()
	ch := store.Listen()
	defer store.Unsubscribe(ch)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				store.RenderLogs(controller.LogsView{})
			}
		}()
	}
	wg.Wait()

	var last uint64
	for i := 0; i < 50; i++ {
		d := <-ch
		if d.Revision <= last {
			t.Fatalf("revision %d after %d", d.Revision, last)
		}
		last = d.Revision
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	// concurrent updates
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				store.RenderStatus(controller.StatusView{Label: controller.LabelIdle})
				store.Notify(controller.Notice{Level: controller.NoticeInfo, Message: "ok"})
			}
		}()
	}

	// concurrent reads
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_ = store.Snapshot()
			}
		}()
	}

	// concurrent subscribe/unsubscribe
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()

	if got := store.Viewers(); got != 0 {
		t.Errorf("Viewers() = %d, want 0", got)
	}
}
