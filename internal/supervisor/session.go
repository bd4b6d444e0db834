package supervisor

import (
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yad2bot/leadscan/internal/cancel"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/progress"
)

// RunSession is one requester's active run. The supervisor holds at most
// one per requester.
type RunSession struct {
	// Requester identifies who started the run.
	Requester string

	// Params echoes the request.
	Params model.RunParams

	// RunName is the identity of the run's on-disk artifacts.
	RunName string

	// Files locates those artifacts.
	Files progress.Files

	// StartedAt is when the crawl process was spawned.
	StartedAt time.Time

	// cmd is the spawned crawl process.
	cmd *exec.Cmd

	// token is the combined cancellation token: memory for the monitor
	// task, flag file for the OS processes.
	token cancel.Token

	// group runs the monitor task.
	group *errgroup.Group
}

// Token returns the session's cancellation token.
func (s *RunSession) Token() cancel.Token {
	return s.token
}

// Wait blocks until the session's monitor task finishes.
func (s *RunSession) Wait() error {
	return s.group.Wait()
}
