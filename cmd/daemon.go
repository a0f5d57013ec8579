package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/daemon"
	"github.com/theirongolddev/fintrack/internal/observability"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

// daemonState is written next to the ledger while a daemon runs. Its
// presence with a live PID is what status, stop and a second start check.
type daemonState struct {
	PID           int       `json:"pid"`
	Addr          string    `json:"addr"`
	StartedAt     time.Time `json:"started_at"`
	DataDir       string    `json:"data_dir"`
	ReferenceYear int       `json:"reference_year"`
	Store         bool      `json:"store"`
}

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonEventsBuffer int
	flagDaemonStateFile    string
	flagDaemonLogFile      string
	flagDaemonDetach       bool
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background recompute daemon with HTTP/SSE endpoints",
	Long: "Polls the workbooks and ledger, recomputes plans and the projection,\n" +
		"and serves them over HTTP with an SSE stream of changes.",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	pf.StringVar(&flagDaemonStateFile, "state-file", filepath.Join(pipeline.StoreDir(), "fintrackd.json"), "Runtime state file")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(pipeline.StoreDir(), "fintrackd.log"), "Log file for detached mode")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// applyDaemonDefaults fills daemon flags left unset from the [daemon]
// config section.
func applyDaemonDefaults() {
	if flagDaemonAddr == "" {
		flagDaemonAddr = cfg.Daemon.Addr
	}
	if flagDaemonInterval <= 0 {
		flagDaemonInterval = time.Duration(cfg.Daemon.IntervalSec) * time.Second
	}
	if flagDaemonEventsBuffer <= 0 {
		flagDaemonEventsBuffer = cfg.Daemon.EventsBuffer
	}
}

func runDaemon(_ *cobra.Command, _ []string) error {
	applyDaemonDefaults()
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("--detach and --child are exclusive")
	}
	if st, ok := liveDaemon(flagDaemonStateFile); ok {
		return fmt.Errorf("daemon already running (pid %d on %s)", st.PID, st.Addr)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonStateFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	if flagDaemonDetach {
		return spawnDaemon()
	}
	return serveDaemon()
}

// spawnDaemon re-executes the current command line as a detached child
// whose output goes to the log file.
func spawnDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	//nolint:gosec // log path is chosen by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, append(filterDetachArg(os.Args[1:]), "--child")...) //nolint:gosec // re-exec of self
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}
	pid := child.Process.Pid
	_ = child.Process.Release()

	fmt.Printf("  Started daemon (pid %d)\n", pid)
	fmt.Printf("  API:   http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  State: %s\n", flagDaemonStateFile)
	fmt.Printf("  Log:   %s\n", flagDaemonLogFile)
	return nil
}

func serveDaemon() error {
	storePath := pipeline.StorePath()
	if flagNoStore {
		storePath = ""
	}

	st := daemonState{
		PID:           os.Getpid(),
		Addr:          flagDaemonAddr,
		StartedAt:     time.Now(),
		DataDir:       flagDataDir,
		ReferenceYear: cfg.General.ReferenceYear,
		Store:         storePath != "",
	}
	if err := writeDaemonState(flagDaemonStateFile, st); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagDaemonStateFile) }()

	log := observability.NewLogger(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	svc := daemon.New(daemon.Config{
		DataDir:       flagDataDir,
		ReferenceYear: cfg.General.ReferenceYear,
		Interval:      flagDaemonInterval,
		Addr:          flagDaemonAddr,
		EventsBuffer:  flagDaemonEventsBuffer,
		Load:          daemon.WorkbookLoader(flagDataDir, storePath),
		Logger:        log,
		Metrics:       observability.NewMetrics(),
	})
	log.Info("daemon starting",
		zap.Int("pid", st.PID),
		zap.String("addr", flagDaemonAddr),
		zap.Duration("interval", flagDaemonInterval),
		zap.String("data_dir", flagDataDir),
		zap.Bool("store", st.Store),
	)

	if !flagDaemonChild {
		fmt.Printf("  fintrack daemon listening on http://%s\n", flagDaemonAddr)
		fmt.Printf("  Polling %s every %s\n", flagDataDir, flagDaemonInterval)
		fmt.Println("  Stop with Ctrl+C or `fintrack daemon stop`")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	st, ok := liveDaemon(flagDaemonStateFile)
	if !ok {
		fmt.Println("  Daemon: not running")
		return nil
	}

	fmt.Printf("  Daemon PID: %d (up %s)\n", st.PID, time.Since(st.StartedAt).Round(time.Second))
	fmt.Printf("  Address: http://%s\n", st.Addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	status, err := fetchDaemonStatus(ctx, st.Addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	if status.LastPollAt.IsZero() {
		fmt.Println("  Last poll: pending")
	} else {
		fmt.Printf("  Last poll: %s (%d polls)\n", status.LastPollAt.Local().Format(time.RFC3339), status.PollCount)
	}
	fmt.Printf("  Reference year: %d\n", status.ReferenceYear)
	fmt.Printf("  Records: %d\n", status.Summary.Records)
	fmt.Printf("  Monthly income: %s\n", cli.FormatMoney(status.Summary.MonthlyIncome))
	fmt.Printf("  Active EMI: %s\n", cli.FormatMoney(status.Summary.ActiveEMI))
	fmt.Printf("  Fixed expenses: %s\n", cli.FormatMoney(status.Summary.FixedExpenses))
	fmt.Printf("  Leftover: %s\n", cli.FormatMoney(status.Summary.Leftover))
	fmt.Printf("  Plans: %d active, %d closed, %d incomplete\n",
		status.Summary.ActivePlans, status.Summary.ClosedPlans, status.Summary.IncompletePlans)
	fmt.Printf("  Subscribers: %d\n", status.SubscriberCount)
	if status.LastError != "" {
		fmt.Printf("  Last error: %s\n", status.LastError)
	}
	return nil
}

func fetchDaemonStatus(ctx context.Context, addr string) (daemon.Status, error) {
	var st daemon.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	st, ok := liveDaemon(flagDaemonStateFile)
	if !ok {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon (pid %d): %w", st.PID, err)
	}

	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(8 * time.Second)
	for {
		select {
		case <-tick.C:
			if !processAlive(st.PID) {
				_ = os.Remove(flagDaemonStateFile)
				fmt.Printf("  Stopped daemon (pid %d)\n", st.PID)
				return nil
			}
		case <-timeout:
			return fmt.Errorf("daemon (pid %d) did not exit in time", st.PID)
		}
	}
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// liveDaemon reads the state file and reports whether its process is
// still running. A stale file is removed.
func liveDaemon(path string) (daemonState, bool) {
	st, err := readDaemonState(path)
	if err != nil {
		return st, false
	}
	if !processAlive(st.PID) {
		_ = os.Remove(path)
		return st, false
	}
	return st, true
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func writeDaemonState(path string, st daemonState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readDaemonState(path string) (daemonState, error) {
	var st daemonState
	//nolint:gosec // state path is chosen by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parse %s: %w", path, err)
	}
	if st.PID <= 0 {
		return st, fmt.Errorf("invalid pid in %s", path)
	}
	return st, nil
}
