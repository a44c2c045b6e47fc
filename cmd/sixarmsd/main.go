package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sixarms/sixarms/internal/config"
	"github.com/sixarms/sixarms/internal/daemon"
	"github.com/sixarms/sixarms/internal/ipc"
	"github.com/sixarms/sixarms/internal/scanner"
	"github.com/sixarms/sixarms/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sixarmsd",
		Short: "Track development activity across local git repositories",
		Long:  "sixarmsd is a daemon that periodically scans your tracked repositories, summarizes the day's changes, and records progress logs, milestones, and release tags.",
	}

	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(stopCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(logsCmd())
	rootCmd.AddCommand(milestonesCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the store directly for read-mostly CLI commands. WAL mode
// plus the busy timeout makes this safe alongside a running daemon.
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.New(cfg.DataDir)
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the sixarmsd daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Check if daemon is already running.
			client := ipc.NewClient(cfg.SocketPath)
			if err := client.Ping(); err == nil {
				fmt.Println("daemon is already running")
				return nil
			}

			// Remove stale socket file (from a prior crash).
			if _, err := os.Stat(cfg.SocketPath); err == nil {
				log.Println("removing stale socket file")
				_ = os.Remove(cfg.SocketPath)
			}

			ipcServer := ipc.NewServer(nil, nil, nil)
			d := daemon.New(cfg, ipcServer)
			ipcServer.SetDaemon(d)

			return d.Start()
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := ipc.NewClient(cfg.SocketPath)
			if err := client.RequestStop(); err != nil {
				return fmt.Errorf("stop daemon: %w", err)
			}
			fmt.Println("stop requested")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := ipc.NewClient(cfg.SocketPath)
			status, err := client.Status()
			if err != nil {
				fmt.Println("daemon is not running")
				return nil
			}

			fmt.Printf("uptime:           %s\n", status.Uptime)
			fmt.Printf("scheduler:        %s\n", startedLabel(status.SchedulerStarted))
			if status.LastScanAt != "" {
				fmt.Printf("last scan:        %s\n", status.LastScanAt)
			} else {
				fmt.Printf("last scan:        never\n")
			}
			fmt.Printf("projects:         %d\n", status.ProjectsCount)
			fmt.Printf("daily logs:       %d\n", status.DailyLogsCount)
			fmt.Printf("milestones:       %d\n", status.MilestonesCount)
			fmt.Printf("db size:          %d bytes\n", status.DBSizeBytes)
			return nil
		},
	}
}

func startedLabel(started bool) string {
	if started {
		return "running"
	}
	return "stopped"
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Trigger a manual scan pass in the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := ipc.NewClient(cfg.SocketPath)
			result, err := client.Scan()
			if err != nil {
				return fmt.Errorf("manual scan: %w", err)
			}

			fmt.Printf("scanned %d projects, %d inbox items, %d new tags, %d milestones\n",
				result.ProjectsScanned, result.InboxItemsCreated, result.TagsSynced, result.MilestonesCreated)
			return nil
		},
	}
}

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage tracked projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <path> [name]",
		Short: "Register a repository for tracking",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sc := scanner.New(cfg.GitBinary)
			path, err := sc.ValidatePath(args[0])
			if err != nil {
				return err
			}
			if !sc.IsRepo(path) {
				return fmt.Errorf("%s is not a git repository", path)
			}

			name := filepath.Base(path)
			if len(args) == 2 {
				name = args[1]
			}

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			now := time.Now().UTC()
			p := store.Project{
				ID:        uuid.NewString(),
				Name:      name,
				Path:      path,
				Status:    store.StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.CreateProject(p); err != nil {
				if store.IsDuplicate(err) {
					return fmt.Errorf("path %s is already tracked", path)
				}
				return err
			}
			fmt.Printf("added %s (%s)\n", name, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tracked projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			projects, err := s.Projects()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("no projects tracked")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%-10s %-20s %s\n", p.Status, p.Name, p.Path)
			}
			return nil
		},
	})

	cmd.AddCommand(projectStatusCmd("pause", store.StatusPaused))
	cmd.AddCommand(projectStatusCmd("resume", store.StatusActive))
	cmd.AddCommand(projectStatusCmd("archive", store.StatusArchived))

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a project and its logs, milestones, and cached tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := findProject(s, args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteProject(p.ID); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", p.Name)
			return nil
		},
	})

	return cmd
}

func projectStatusCmd(verb string, status store.ProjectStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <name>",
		Short: fmt.Sprintf("Set a project's status to %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := findProject(s, args[0])
			if err != nil {
				return err
			}
			if err := s.UpdateProjectStatus(p.ID, status); err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", p.Name, status)
			return nil
		},
	}
}

// findProject resolves a project by name or id.
func findProject(s *store.Store, nameOrID string) (*store.Project, error) {
	projects, err := s.Projects()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Name == nameOrID || projects[i].ID == nameOrID {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("no project named %q", nameOrID)
}

func logsCmd() *cobra.Command {
	var projectName string
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daily progress logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			projectID := ""
			if projectName != "" {
				p, err := findProject(s, projectName)
				if err != nil {
					return err
				}
				projectID = p.ID
			}

			logs, err := s.DailyLogs(projectID, limit)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Println("no logs recorded")
				return nil
			}
			for _, l := range logs {
				fmt.Printf("%s  [%-8s]  %s\n", l.Date, l.Category, l.Summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "filter by project name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 30, "maximum number of logs")
	return cmd
}

func milestonesCmd() *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Show milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			projectID := ""
			if projectName != "" {
				p, err := findProject(s, projectName)
				if err != nil {
					return err
				}
				projectID = p.ID
			}

			milestones, err := s.Milestones(projectID)
			if err != nil {
				return err
			}
			if len(milestones) == 0 {
				fmt.Println("no milestones recorded")
				return nil
			}
			for _, m := range milestones {
				tag := ""
				if m.GitTag != "" {
					tag = " (tag " + m.GitTag + ")"
				}
				fmt.Printf("%-12s %-8s %s%s\n", m.Status, m.Source, m.Title, tag)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "filter by project name")
	return cmd
}

func tagsCmd() *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show cached git tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			var tags []store.CachedGitTag
			if projectName != "" {
				p, err := findProject(s, projectName)
				if err != nil {
					return err
				}
				tags, err = s.CachedTags(p.ID)
				if err != nil {
					return err
				}
			} else {
				tags, err = s.AllCachedTags()
				if err != nil {
					return err
				}
			}

			if len(tags) == 0 {
				fmt.Println("no tags cached")
				return nil
			}
			for _, t := range tags {
				fmt.Printf("%-20s %-10s %s  %s\n", t.Name, t.CommitHash, t.Date, t.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "filter by project name")
	return cmd
}

func statsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show activity statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			activity, err := s.ActivityStats(days)
			if err != nil {
				return err
			}
			fmt.Printf("activity (last %d days):\n", days)
			if len(activity) == 0 {
				fmt.Println("  none")
			}
			for _, a := range activity {
				fmt.Printf("  %s  %d\n", a.Date, a.Count)
			}

			categories, err := s.CategoryDistribution()
			if err != nil {
				return err
			}
			if len(categories) > 0 {
				fmt.Println("by category:")
				for _, c := range categories {
					fmt.Printf("  %-10s %d\n", c.Category, c.Count)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 30, "trailing window in days")
	return cmd
}
