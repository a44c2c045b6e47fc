package ipc

import "github.com/sixarms/sixarms/internal/scheduler"

// Request is a JSON message sent from client to server.
type Request struct {
	Command string            `json:"command"` // "ping", "status", "scan", "stop"
	Args    map[string]string `json:"args,omitempty"`
}

// Response is a JSON message sent from server to client.
type Response struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// StatusData is returned by the "status" command.
type StatusData struct {
	Uptime           string `json:"uptime"`
	SchedulerStarted bool   `json:"scheduler_started"`
	LastScanAt       string `json:"last_scan_at,omitempty"`
	ProjectsCount    int64  `json:"projects_count"`
	DailyLogsCount   int64  `json:"daily_logs_count"`
	MilestonesCount  int64  `json:"milestones_count"`
	DBSizeBytes      int64  `json:"db_size_bytes"`
}

// ScanData is returned by the "scan" command.
type ScanData struct {
	scheduler.PassResult
}
