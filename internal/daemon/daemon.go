// Package daemon wires the store, scanner, AI client, scheduler, and IPC
// server into the sixarmsd background process and manages its lifecycle.
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sixarms/sixarms/internal/ai"
	"github.com/sixarms/sixarms/internal/config"
	"github.com/sixarms/sixarms/internal/scanner"
	"github.com/sixarms/sixarms/internal/scheduler"
	"github.com/sixarms/sixarms/internal/store"
)

// IPCServer is the interface the daemon uses to start/stop the IPC listener.
// This avoids a circular dependency with the ipc package.
type IPCServer interface {
	Listen(socketPath string, ctx context.Context) error
	Stop() error
}

// StoreAware can receive a store reference after it becomes available.
type StoreAware interface {
	SetStore(store interface{})
}

// SchedulerAware can receive a scheduler reference after it becomes available.
type SchedulerAware interface {
	SetScheduler(sched interface{})
}

// Daemon manages the lifecycle of the sixarmsd background process.
type Daemon struct {
	cfg       *config.Config
	store     *store.Store
	scheduler *scheduler.Scheduler
	ipc       IPCServer
	startTime time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
}

// New creates a new Daemon with the given config.
// The IPC server is injected to avoid circular imports.
func New(cfg *config.Config, ipcServer IPCServer) *Daemon {
	return &Daemon{
		cfg: cfg,
		ipc: ipcServer,
	}
}

// Start initialises the store, runs migrations, starts the scheduler and IPC
// server, and blocks until the context is cancelled (via signal or Stop).
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.mu.Unlock()

	if err := d.cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Open store (runs migrations).
	s, err := store.New(d.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	d.store = s

	// Build the scan pipeline.
	sc := scanner.New(d.cfg.GitBinary)
	grok := ai.NewGrokClient(os.Getenv("XAI_API_KEY"), d.cfg.GrokModel)
	if !grok.HasAPIKey() {
		log.Println("XAI_API_KEY not set; falling back to offline classification")
	}
	d.scheduler = scheduler.New(s, sc, grok, logEvents{})

	// Hand late-bound references to the IPC server.
	if sa, ok := d.ipc.(StoreAware); ok {
		sa.SetStore(s)
	}
	if sa, ok := d.ipc.(SchedulerAware); ok {
		sa.SetScheduler(d.scheduler)
	}

	// Create a signal-aware context.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	d.ctx = ctx
	d.cancel = cancel
	d.startTime = time.Now()

	d.mu.Lock()
	d.running = true
	d.mu.Unlock()

	// Start IPC server in a goroutine.
	ipcErrCh := make(chan error, 1)
	go func() {
		ipcErrCh <- d.ipc.Listen(d.cfg.SocketPath, d.ctx)
	}()

	settings := s.UserSettings()

	if settings.Scan.ScanOnStartup {
		if _, err := d.scheduler.RunStartupScan(ctx); err != nil {
			log.Printf("startup scan error: %v", err)
		}
	}

	d.scheduler.Start(settings.Scan)

	log.Printf("daemon started (pid %d, data dir %s, socket %s)", os.Getpid(), d.cfg.DataDir, d.cfg.SocketPath)

	// Block until context is cancelled or IPC server fails.
	select {
	case <-d.ctx.Done():
		log.Println("shutdown signal received")
	case err := <-ipcErrCh:
		if err != nil {
			log.Printf("IPC server error: %v", err)
		}
	}

	return d.shutdown()
}

// Stop triggers a graceful shutdown from outside (e.g. via IPC stop command).
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
}

// shutdown performs ordered teardown: scheduler, IPC server, store, socket.
func (d *Daemon) shutdown() error {
	log.Println("shutting down...")

	// Stop the scheduler's ticker loop. An in-flight pass finishes against
	// the still-open store.
	if d.scheduler != nil {
		d.scheduler.Stop()
	}

	// Stop IPC server (stops accepting, drains connections).
	if d.ipc != nil {
		if err := d.ipc.Stop(); err != nil {
			log.Printf("ipc stop: %v", err)
		}
	}

	// Close the store.
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			log.Printf("store close: %v", err)
		}
	}

	// Remove socket file.
	_ = os.Remove(d.cfg.SocketPath)

	d.mu.Lock()
	d.running = false
	d.mu.Unlock()

	log.Println("daemon stopped")
	return nil
}

// Running returns true if the daemon is currently running.
func (d *Daemon) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Store returns the daemon's data store.
func (d *Daemon) Store() *store.Store {
	return d.store
}

// Scheduler returns the daemon's scan scheduler.
func (d *Daemon) Scheduler() *scheduler.Scheduler {
	return d.scheduler
}

// Uptime returns how long the daemon has been running.
func (d *Daemon) Uptime() time.Duration {
	if d.startTime.IsZero() {
		return 0
	}
	return time.Since(d.startTime)
}

// logEvents delivers observability signals to the process log. Best-effort
// by construction.
type logEvents struct{}

func (logEvents) ScanStarted(kind string) {
	log.Printf("event: %s scan started", kind)
}

func (logEvents) ScanComplete(kind string, result scheduler.PassResult) {
	log.Printf("event: %s scan complete (projects=%d inbox=%d tags=%d milestones=%d)",
		kind, result.ProjectsScanned, result.InboxItemsCreated, result.TagsSynced, result.MilestonesCreated)
}

func (logEvents) TagsSynced(newTags, milestonesCreated int) {
	log.Printf("event: tags synced (new=%d milestones=%d)", newTags, milestonesCreated)
}
