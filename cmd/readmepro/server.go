package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/kalambet/readmepro/internal/api"
	"github.com/kalambet/readmepro/internal/config"
	"github.com/kalambet/readmepro/internal/github"
	"github.com/kalambet/readmepro/internal/metrics"
	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/publish"
	"github.com/kalambet/readmepro/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the readmepro server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		profileFile, _ := cmd.Flags().GetString("file")
		return runServer(withMCP, profileFile)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running readmepro server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show readmepro server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func init() {
	startCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
	startCmd.Flags().StringP("file", "f", "", "seed the session from a YAML or JSON profile file")
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "readmepro.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer(withMCP bool, profileFile string) error {
	fmt.Fprintln(os.Stderr, versionString())

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")
	if cfg.GitHub.Token == "" {
		printWarning("%s", config.MissingTokenHint())
	}

	// Refuse to start twice on the same port.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("readmepro is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("readmepro is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	gh := github.NewClientWithBaseURL(cfg.GitHub.Token, cfg.GitHub.BaseURL)
	gh.SetObserver(rec)

	mgr := profile.NewManager()
	if profileFile != "" {
		s, err := profile.LoadFile(profileFile)
		if err != nil {
			return err
		}
		mgr = profile.NewManagerWithState(s)
		slog.Info("profile loaded", "file", profileFile)
	}
	if cfg.GitHub.Username != "" && mgr.Snapshot().Username == "" {
		u := cfg.GitHub.Username
		mgr.Dispatch(profile.UpdateFields{Patch: profile.Patch{Username: &u}})
	}

	deps := api.AppDeps{
		Profile:         mgr,
		GitHub:          gh,
		Publisher:       publish.NewService(gh, store, rec),
		History:         store,
		Metrics:         rec,
		Token:           apiToken,
		GitHubToken:     cfg.GitHub.Token,
		DefaultUsername: cfg.GitHub.Username,
		ReposPerPage:    cfg.GitHub.ReposPerPage,
		ImportLimit:     cfg.GitHub.ImportLimit,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewAppHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	if withMCP {
		stdioSrv := server.NewStdioServer(api.NewMCPServer(deps))
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "readmepro listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("readmepro is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop readmepro (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to readmepro (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	running := false
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.GitHub.Token != "" {
		printStatus("GitHub token", "configured")
	} else {
		printStatus("GitHub token", "not configured")
	}
	if cfg.GitHub.Username != "" {
		printStatus("GitHub user", "%s", cfg.GitHub.Username)
	}

	if running {
		if c, err := newAPIClient(); err == nil {
			reqCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if resp, err := c.get(reqCtx, "/profile"); err == nil {
				var s profile.State
				if decodeJSON(resp, &s) == nil {
					printStatus("Profile", "%s (%d skills, %d projects, %d gists)",
						orDash(s.Username), len(s.Skills), len(s.Projects), len(s.Gists))
				}
			}
		}
	}

	if last, err := lastPublish(cfg); err == nil {
		printStatus("Last publish", "%s (%s)", last.CreatedAt.Local().Format(time.DateTime), last.Username)
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

// lastPublish reads the history database directly so status works while
// the server is stopped.
func lastPublish(cfg config.Config) (storage.Publish, error) {
	if cfg.GitHub.Username == "" {
		return storage.Publish{}, storage.ErrNotFound
	}
	if _, err := os.Stat(filepath.Join(cfg.Storage.DataDir, "readmepro.db")); err != nil {
		return storage.Publish{}, storage.ErrNotFound
	}
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return storage.Publish{}, err
	}
	defer store.Close()
	return store.LastSuccessfulPublish(cfg.GitHub.Username)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
