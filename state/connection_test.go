package state

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aki307/frext/client"
	"github.com/aki307/frext/model"
)

type fakeHealth struct {
	up    atomic.Bool
	calls atomic.Int32
}

func (f *fakeHealth) TestConnection(context.Context) *model.APIResponse[model.HealthStatus] {
	f.calls.Add(1)
	if f.up.Load() {
		return model.OK(&model.HealthStatus{Status: "ok"}, "")
	}
	return model.Failure[model.HealthStatus](client.MsgNetwork, client.ErrNetwork)
}

func TestConnectionMonitorCheck(t *testing.T) {
	api := &fakeHealth{}
	m := NewConnectionMonitor(api, time.Hour, nil)

	var changes []bool
	m.OnChange(func(c bool) { changes = append(changes, c) })

	if m.Check(context.Background()) {
		t.Error("Expected disconnected")
	}
	api.up.Store(true)
	m.Check(context.Background())
	m.Check(context.Background())

	if !m.Connected() {
		t.Error("Expected connected")
	}
	if len(changes) != 2 || changes[0] || !changes[1] {
		t.Errorf("Expected transitions [false true], got %v", changes)
	}
}

func TestConnectionMonitorRunAndFocus(t *testing.T) {
	api := &fakeHealth{}
	api.up.Store(true)
	m := NewConnectionMonitor(api, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	waitFor := func(n int32) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for api.calls.Load() < n {
			if time.Now().After(deadline) {
				t.Fatalf("Expected %d checks, got %d", n, api.calls.Load())
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitFor(1)
	m.Focus()
	waitFor(2)
	if !m.Connected() {
		t.Error("Expected connected")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Run to return after cancel")
	}
}

func TestConnectionMonitorPolls(t *testing.T) {
	api := &fakeHealth{}
	m := NewConnectionMonitor(api, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	m.Run(ctx)

	if api.calls.Load() < 3 {
		t.Errorf("Expected several polls, got %d", api.calls.Load())
	}
	if m.Connected() {
		t.Error("Expected disconnected")
	}
}

func TestNewConnectionMonitorDefaultInterval(t *testing.T) {
	m := NewConnectionMonitor(&fakeHealth{}, 0, nil)
	if m.interval != DefaultPollInterval {
		t.Errorf("Expected default interval, got %v", m.interval)
	}
}
