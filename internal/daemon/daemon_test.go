package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sixarms/sixarms/internal/config"
)

// fakeIPC satisfies IPCServer without opening a socket.
type fakeIPC struct {
	listenCh chan struct{}
	stopped  bool
}

func (f *fakeIPC) Listen(socketPath string, ctx context.Context) error {
	close(f.listenCh)
	<-ctx.Done()
	return nil
}

func (f *fakeIPC) Stop() error {
	f.stopped = true
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataDir:    dir,
		SocketPath: filepath.Join(dir, "test.sock"),
		GitBinary:  "git",
	}
}

func TestDaemonStartAndStop(t *testing.T) {
	ipc := &fakeIPC{listenCh: make(chan struct{})}
	d := New(testConfig(t), ipc)

	done := make(chan error, 1)
	go func() {
		done <- d.Start()
	}()

	select {
	case <-ipc.listenCh:
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not start IPC listener")
	}

	deadline := time.Now().Add(5 * time.Second)
	for !d.Running() {
		if time.Now().After(deadline) {
			t.Fatal("daemon never reported running")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if d.Uptime() <= 0 {
		t.Error("uptime should be positive while running")
	}
	if d.Store() == nil || d.Scheduler() == nil {
		t.Error("store and scheduler should be wired after start")
	}

	d.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down")
	}

	if d.Running() {
		t.Error("daemon still reports running after shutdown")
	}
	if !ipc.stopped {
		t.Error("IPC server was not stopped during shutdown")
	}
}

func TestDaemonUptimeZeroBeforeStart(t *testing.T) {
	d := New(testConfig(t), &fakeIPC{listenCh: make(chan struct{})})
	if d.Uptime() != 0 {
		t.Errorf("uptime = %v before start", d.Uptime())
	}
}
