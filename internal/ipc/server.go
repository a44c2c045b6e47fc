package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/sixarms/sixarms/internal/scheduler"
)

// DaemonQuerier is the interface the IPC server uses to query and control
// the daemon process. This avoids importing the daemon wiring (which would
// be circular).
type DaemonQuerier interface {
	Uptime() time.Duration
	Stop()
}

// ScanTrigger runs manual scan passes and exposes scheduler state.
type ScanTrigger interface {
	RunManualScan(ctx context.Context) (scheduler.PassResult, error)
	Started() bool
	LastScan() time.Time
}

// StoreQuerier provides data access methods needed by the IPC server.
type StoreQuerier interface {
	ProjectsCount() (int64, error)
	DailyLogsCount() (int64, error)
	MilestonesCount() (int64, error)
	DBSizeBytes() (int64, error)
}

// Server is a Unix domain socket server for CLI-to-daemon communication.
type Server struct {
	daemon    DaemonQuerier
	scheduler ScanTrigger
	store     StoreQuerier

	listener net.Listener
	mu       sync.Mutex
	wg       sync.WaitGroup
	stopped  bool
}

// NewServer creates a new IPC server.
func NewServer(daemon DaemonQuerier, sched ScanTrigger, store StoreQuerier) *Server {
	return &Server{
		daemon:    daemon,
		scheduler: sched,
		store:     store,
	}
}

// Listen starts accepting connections on the given Unix socket path.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Listen(socketPath string, ctx context.Context) error {
	// Remove stale socket file if it exists.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen %s: %w", socketPath, err)
	}

	// Set socket permissions to owner-only.
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = ln.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.stopped = false
	s.mu.Unlock()

	log.Printf("IPC server listening on %s", socketPath)

	// Close the listener when context is cancelled.
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				return nil
			}
			// Context cancelled causes listener to close.
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Stop stops accepting connections and waits for in-flight connections to drain.
func (s *Server) Stop() error {
	s.mu.Lock()
	s.stopped = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}

	// Wait for in-flight connections with a timeout.
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("drain timeout: connections still open after 5s")
	}
}

// SetDaemon sets the daemon reference. Called after daemon construction to
// break the circular construction dependency.
func (s *Server) SetDaemon(d DaemonQuerier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daemon = d
}

// SetStore updates the store reference after daemon startup.
// Accepts interface{} to satisfy daemon.StoreAware without circular imports.
// The concrete value must implement StoreQuerier.
func (s *Server) SetStore(st interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sq, ok := st.(StoreQuerier); ok {
		s.store = sq
	}
}

// SetScheduler updates the scheduler reference after daemon startup.
// The concrete value must implement ScanTrigger.
func (s *Server) SetScheduler(sched interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := sched.(ScanTrigger); ok {
		s.scheduler = st
	}
}

// handleConn reads a single JSON request, dispatches it, and writes the response.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	// A manual scan can take a while; other commands answer immediately.
	_ = conn.SetDeadline(time.Now().Add(5 * time.Minute))

	sc := bufio.NewScanner(conn)
	if !sc.Scan() {
		writeError(conn, "empty request")
		return
	}

	var req Request
	if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
		writeError(conn, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	switch req.Command {
	case "ping":
		writeResponse(conn, Response{OK: true, Data: "pong"})

	case "status":
		s.handleStatus(conn)

	case "scan":
		s.handleScan(conn)

	case "stop":
		writeResponse(conn, Response{OK: true, Data: "shutting down"})
		// Trigger daemon shutdown after sending response.
		if s.daemon != nil {
			s.daemon.Stop()
		}

	default:
		writeError(conn, fmt.Sprintf("unknown command: %q", req.Command))
	}
}

func (s *Server) handleStatus(conn net.Conn) {
	var data StatusData

	if s.daemon != nil {
		data.Uptime = s.daemon.Uptime().Truncate(time.Second).String()
	}
	if s.scheduler != nil {
		data.SchedulerStarted = s.scheduler.Started()
		if last := s.scheduler.LastScan(); !last.IsZero() {
			data.LastScanAt = last.Format(time.RFC3339)
		}
	}
	if s.store != nil {
		data.ProjectsCount, _ = s.store.ProjectsCount()
		data.DailyLogsCount, _ = s.store.DailyLogsCount()
		data.MilestonesCount, _ = s.store.MilestonesCount()
		data.DBSizeBytes, _ = s.store.DBSizeBytes()
	}

	writeResponse(conn, Response{OK: true, Data: data})
}

func (s *Server) handleScan(conn net.Conn) {
	if s.scheduler == nil {
		writeError(conn, "scheduler not available")
		return
	}

	result, err := s.scheduler.RunManualScan(context.Background())
	if err != nil {
		writeError(conn, fmt.Sprintf("scan failed: %v", err))
		return
	}
	writeResponse(conn, Response{OK: true, Data: ScanData{PassResult: result}})
}

func writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("ipc: marshal response: %v", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		log.Printf("ipc: write response: %v", err)
	}
}

func writeError(conn net.Conn, msg string) {
	writeResponse(conn, Response{OK: false, Error: msg})
}
