package messenger

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Resolver finds the application registered for a URL scheme.
// An empty handler with a nil error means nothing is registered.
type Resolver interface {
	Resolve(ctx context.Context, scheme string) (string, error)
}

// Verify XDGResolver satisfies Resolver at compile time.
var _ Resolver = (*XDGResolver)(nil)

// XDGResolver asks xdg-mime for the default x-scheme-handler.
type XDGResolver struct {
	cmdBuilder func(ctx context.Context, scheme string) *exec.Cmd
}

// NewXDGResolver creates a resolver backed by xdg-mime.
func NewXDGResolver() *XDGResolver {
	return &XDGResolver{cmdBuilder: xdgMimeCmd}
}

// Resolve returns the desktop entry registered for scheme, e.g.
// "whatsapp.desktop", or "" if none is registered.
func (r *XDGResolver) Resolve(ctx context.Context, scheme string) (string, error) {
	cmd := r.cmdBuilder(ctx, scheme)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

func xdgMimeCmd(ctx context.Context, scheme string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "xdg-mime", "query", "default", "x-scheme-handler/"+scheme)
	cmd.WaitDelay = time.Second
	return cmd
}
