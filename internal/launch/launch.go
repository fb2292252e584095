// Package launch starts the program whose windows get tiled.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Process is a started program.
type Process struct {
	PID     int
	Command []string
	cmd     *exec.Cmd
}

// Wait blocks until the process exits.
func (p *Process) Wait() error {
	if p == nil || p.cmd == nil {
		return nil
	}
	return p.cmd.Wait()
}

// Launcher starts programs and URLs.
type Launcher struct {
	logger  *slog.Logger
	handler func(ctx context.Context, scheme string) ([]string, error)
}

// New returns a Launcher that resolves URL handlers via xdg-mime.
func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{logger: logger, handler: lookupSchemeHandler}
}

// IsURL reports whether target should be opened with a URL handler.
func IsURL(target string) bool {
	scheme, _, ok := strings.Cut(target, "://")
	if !ok || scheme == "" {
		return false
	}
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// Start launches target with args. A URL target is opened with the desktop
// handler for its scheme, started directly so that its windows belong to
// the returned process tree; xdg-open is the fallback.
func (l *Launcher) Start(ctx context.Context, target string, args []string) (*Process, error) {
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("nothing to launch")
	}

	argv := append([]string{target}, args...)
	if IsURL(target) {
		argv = l.urlCommand(ctx, target, args)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	l.logger.Info("launched", "pid", cmd.Process.Pid, "command", strings.Join(argv, " "))
	return &Process{PID: cmd.Process.Pid, Command: argv, cmd: cmd}, nil
}

func (l *Launcher) urlCommand(ctx context.Context, url string, args []string) []string {
	scheme, _, _ := strings.Cut(url, "://")
	argv, err := l.handler(ctx, strings.ToLower(scheme))
	if err != nil || len(argv) == 0 {
		l.logger.Debug("no direct URL handler, using xdg-open", "scheme", scheme, "error", err)
		return append([]string{"xdg-open", url}, args...)
	}
	return append(expandFieldCodes(argv, url), args...)
}

// KillTree sends SIGTERM to every pid, children first.
func KillTree(pids []int) error {
	var errs []error
	for i := len(pids) - 1; i >= 0; i-- {
		if err := syscall.Kill(pids[i], syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
			errs = append(errs, fmt.Errorf("kill %d: %w", pids[i], err))
		}
	}
	return errors.Join(errs...)
}
