package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yad2bot/leadscan/internal/cancel"
	"github.com/yad2bot/leadscan/internal/config"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/monitor"
	"github.com/yad2bot/leadscan/internal/progress"
	"github.com/yad2bot/leadscan/internal/store"
)

// Supervisor owns the run lifecycle: spawn, monitor, cancel, record.
type Supervisor struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger

	// execPath is the binary spawned for the crawl process. Defaults to
	// the running executable; tests point it at a stub.
	execPath string

	// onUpdate and onFinish stream run events to the caller.
	onUpdate func(requester string, snap model.ProgressSnapshot)
	onFinish func(requester string, report *model.RunReport)

	mu       sync.Mutex
	sessions map[string]*RunSession
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithStore sets the lead store for run-result recording.
func WithStore(st *store.Store) Option {
	return func(s *Supervisor) { s.store = st }
}

// WithLogger sets the supervisor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithExecPath overrides the binary spawned for the crawl process.
func WithExecPath(path string) Option {
	return func(s *Supervisor) { s.execPath = path }
}

// WithOnUpdate registers a progress callback, invoked from the monitor
// task for every fresh snapshot.
func WithOnUpdate(fn func(requester string, snap model.ProgressSnapshot)) Option {
	return func(s *Supervisor) { s.onUpdate = fn }
}

// WithOnFinish registers a completion callback, invoked once per run
// with the terminal report.
func WithOnFinish(fn func(requester string, report *model.RunReport)) Option {
	return func(s *Supervisor) { s.onFinish = fn }
}

// New creates a Supervisor.
func New(cfg *config.Config, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:      cfg,
		sessions: make(map[string]*RunSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.execPath == "" {
		if path, err := os.Executable(); err == nil {
			s.execPath = path
		}
	}
	return s
}

// StartRun spawns the crawl process for the requester and begins
// monitoring it in the background, returning as soon as the process is
// up. ErrRunActive when the requester already has a run; ErrSpawnFailed
// when the process cannot be started.
func (s *Supervisor) StartRun(ctx context.Context, requester string, params model.RunParams) (*RunSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, active := s.sessions[requester]; active {
		return nil, ErrRunActive
	}

	now := time.Now()
	day := now.Format("2006-01-02")
	runName := config.RunName(params.CityCode, params.Mode, params.Recency, now)
	files := progress.NewFiles(s.cfg.DataDir, runName)

	// A leftover snapshot from an earlier run today would be read as
	// current progress, so clear the slate first.
	if removed, err := progress.RemoveStale(s.cfg.DataDir, day); err != nil {
		s.logger.Warn("stale file cleanup incomplete", "removed", removed, "error", err)
	} else if removed > 0 {
		s.logger.Debug("removed stale run files", "count", removed)
	}

	token := cancel.NewMultiToken(
		cancel.NewMemoryToken(),
		cancel.NewFileToken(files.CancelFlag(), requester),
	)

	cmd := s.crawlCommand(params)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	s.logger.Info("crawl process started", "run", runName, "pid", cmd.Process.Pid)

	group, gctx := errgroup.WithContext(ctx)
	session := &RunSession{
		Requester: requester,
		Params:    params,
		RunName:   runName,
		Files:     files,
		StartedAt: now,
		cmd:       cmd,
		token:     token,
		group:     group,
	}
	s.sessions[requester] = session

	group.Go(func() error {
		s.superviseRun(gctx, session)
		return nil
	})
	return session, nil
}

// crawlCommand builds the crawl process invocation.
func (s *Supervisor) crawlCommand(params model.RunParams) *exec.Cmd {
	args := []string{
		"crawl",
		"--mode", params.Mode,
		"--recency", params.Recency,
		"--data-dir", s.cfg.DataDir,
	}
	if params.CityCode != "" {
		args = append(args, "--city", params.CityCode)
	}
	if params.PageBudget > 0 {
		args = append(args, "--pages", strconv.Itoa(params.PageBudget))
	}

	cmd := exec.Command(s.execPath, args...)
	cmd.Env = append(os.Environ(), config.EnvAPIKey+"="+s.cfg.RenderAPIKey)
	return cmd
}

// superviseRun is the per-session background task: it watches the run
// to a terminal state, reaps the process, records the result, and
// tears the session down.
func (s *Supervisor) superviseRun(ctx context.Context, session *RunSession) {
	mon := monitor.New(session.Files,
		monitor.WithCancelToken(session.token),
		monitor.WithLogger(s.logger),
		monitor.WithIntervals(s.cfg.PollInterval, s.cfg.StallTimeout, s.cfg.RunCeiling, s.cfg.GracePeriod),
		monitor.WithOnUpdate(func(snap model.ProgressSnapshot) {
			if s.onUpdate != nil {
				s.onUpdate(session.Requester, snap)
			}
		}),
	)

	report := mon.Run(ctx, session.Params)
	report.StartedAt = session.StartedAt

	// A timed-out or cancelled pipeline process may still be running.
	if report.Status != model.StatusCompleted {
		s.killProcesses(session)
	}

	// Reap the crawl process so it does not linger as a zombie.
	if err := session.cmd.Wait(); err != nil {
		s.logger.Debug("crawl process exit", "error", err)
	}

	if s.store != nil {
		if err := s.store.SaveRunResult(context.Background(), report); err != nil {
			s.logger.Warn("failed to save run result", "error", err)
		}
	}

	s.mu.Lock()
	delete(s.sessions, session.Requester)
	s.mu.Unlock()

	if s.onFinish != nil {
		s.onFinish(session.Requester, report)
	}
}

// CancelRun cancels the requester's active run. It reports whether
// there was anything to cancel; calling it with no active run is a
// harmless no-op.
func (s *Supervisor) CancelRun(requester string) bool {
	s.mu.Lock()
	session, active := s.sessions[requester]
	s.mu.Unlock()
	if !active {
		return false
	}

	if err := session.token.Cancel(); err != nil {
		s.logger.Warn("failed to set cancel token", "error", err)
	}
	if err := FlagAllRuns(s.cfg.DataDir, time.Now(), requester); err != nil {
		s.logger.Warn("failed to flag runs for cancellation", "error", err)
	}
	s.killProcesses(session)

	s.logger.Info("run cancelled", "requester", requester, "run", session.RunName)
	return true
}

// Active reports whether the requester has a run in flight.
func (s *Supervisor) Active(requester string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, active := s.sessions[requester]
	return active
}

// killProcesses stops the session's own process and any pipeline
// process matching the known command lines. Best effort on every step;
// a process that already exited is fine.
func (s *Supervisor) killProcesses(session *RunSession) {
	if session.cmd != nil && session.cmd.Process != nil {
		if err := session.cmd.Process.Kill(); err != nil {
			s.logger.Debug("crawl process kill", "error", err)
		}
	}
	KillByName(s.logger)
}

// KillByName kills stray pipeline processes by their command lines.
// The patterns include the subcommand so the supervisor never matches
// itself.
func KillByName(logger *slog.Logger) {
	for _, pattern := range []string{"leadscan crawl", "leadscan extract"} {
		cmd := exec.Command("pkill", "-f", pattern)
		if err := cmd.Run(); err != nil {
			// pkill exits 1 when nothing matched.
			logger.Debug("pkill", "pattern", pattern, "error", err)
		}
	}
}

// FlagAllRuns writes cancellation flags for every run that could be
// live today: one next to each existing snapshot file, plus the
// standard name combinations in case a process has not written its
// snapshot yet.
func FlagAllRuns(dir string, now time.Time, by string) error {
	var firstErr error
	writeFlag := func(path string) {
		token := cancel.NewFileToken(path, by)
		if err := token.Cancel(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*_progress.json"))
	if err == nil {
		for _, match := range matches {
			base := filepath.Base(match)
			runName := strings.TrimSuffix(base, "_progress.json")
			// The crawl snapshot carries an extra marker before the
			// common suffix.
			runName = strings.TrimSuffix(runName, "_checking")
			writeFlag(progress.NewFiles(dir, runName).CancelFlag())
		}
	}

	for _, mode := range []string{"rent", "sale"} {
		for _, recency := range []string{"recent", "all"} {
			runName := config.RunName("", mode, recency, now)
			writeFlag(progress.NewFiles(dir, runName).CancelFlag())
		}
	}
	return firstErr
}
