package messenger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/smileynet/contactos/internal/logging"
)

// defaultTimeout is used when no timeout option is provided.
const defaultTimeout = 10 * time.Second

// Launcher opens compose addresses for one Target.
type Launcher struct {
	target     Target
	resolver   Resolver
	timeout    time.Duration
	logger     *slog.Logger
	lookPath   func(file string) (string, error)
	cmdBuilder func(ctx context.Context, opener, address string) *exec.Cmd
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithTimeout sets the time limit for resolving and opening.
func WithTimeout(d time.Duration) Option {
	return func(l *Launcher) { l.timeout = d }
}

// WithResolver replaces the default xdg-mime resolver.
func WithResolver(r Resolver) Option {
	return func(l *Launcher) { l.resolver = r }
}

// WithLogger sets the logger for handoff events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// NewLauncher creates a Launcher for target.
func NewLauncher(target Target, opts ...Option) *Launcher {
	l := &Launcher{
		target:   target,
		timeout:  defaultTimeout,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.resolver == nil {
		l.resolver = NewXDGResolver()
	}
	if l.logger == nil {
		l.logger = logging.Discard()
	}
	if l.cmdBuilder == nil {
		l.cmdBuilder = defaultCmdBuilder
	}
	return l
}

// Target returns the launcher's target.
func (l *Launcher) Target() Target { return l.target }

// Send opens a compose screen addressed to phone. It fails with
// *NotResolvableError, without launching anything, when neither the
// opener nor a handler for the target's scheme is available, and with
// *TimeoutError when resolving or opening outlives the timeout.
func (l *Launcher) Send(ctx context.Context, phone string) error {
	address, err := l.target.BuildAddress(phone)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.resolve(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &TimeoutError{Target: l.target.Name, Duration: l.timeout}
		}
		l.logger.Warn("handoff not resolvable", "target", l.target.Name, "error", err)
		return err
	}

	cmd := l.cmdBuilder(ctx, l.target.Opener, address)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Target: l.target.Name, Duration: l.timeout}
		}
		return &LaunchError{
			Target: l.target.Name,
			Err:    fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())),
		}
	}

	l.logger.Info("handoff opened", "target", l.target.Name, "address", address)
	return nil
}

// resolve checks that the opener exists and that the scheme resolves to an
// application, matching the pinned handler if the target has one.
func (l *Launcher) resolve(ctx context.Context) error {
	if _, err := l.lookPath(l.target.Opener); err != nil {
		return &NotResolvableError{Target: l.target, Err: err}
	}

	handler, err := l.resolver.Resolve(ctx, l.target.Scheme)
	if err != nil {
		return &NotResolvableError{Target: l.target, Err: err}
	}
	if handler == "" {
		return &NotResolvableError{Target: l.target}
	}
	if l.target.Handler != "" && handler != l.target.Handler {
		return &NotResolvableError{Target: l.target, Handler: handler}
	}
	return nil
}

// defaultCmdBuilder creates the opener command for address.
func defaultCmdBuilder(ctx context.Context, opener, address string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, opener, address)
	cmd.WaitDelay = time.Second
	return cmd
}
