package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/contactos"
	"github.com/smileynet/contactos/internal/access"
	"github.com/smileynet/contactos/internal/addressbook"
	"github.com/smileynet/contactos/internal/config"
	"github.com/smileynet/contactos/internal/contact"
	"github.com/smileynet/contactos/internal/logging"
	"github.com/smileynet/contactos/internal/messenger"
	"github.com/smileynet/contactos/internal/picker"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for contactos.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Pick    PickCmd          `cmd:"" default:"1" help:"Search contacts and open a conversation (default)."`
	List    ListCmd          `cmd:"" help:"Print contacts, optionally filtered by name."`
	Send    SendCmd          `cmd:"" help:"Open a conversation with a phone number."`
	Grant   GrantCmd         `cmd:"" help:"Remember read-contacts access."`
	Revoke  RevokeCmd        `cmd:"" help:"Forget remembered read-contacts access."`
	Import  ImportCmd        `cmd:"" help:"Import a YAML address book into the contacts database, appending unless --replace is set."`
	Init    InitCmd          `cmd:"" help:"Write a sample config and address book."`
}

// --- Shared wiring ---

// loadConfig loads layered config from user and project paths with env
// overrides, then validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/contactos/config.yaml"),
		".contactos/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSource creates the configured contact source via the registry.
func openSource(cfg *config.Config) (addressbook.Source, error) {
	reg := addressbook.NewRegistry()
	addressbook.RegisterBuiltins(reg)
	return reg.NewSource(cfg.Source.Kind, cfg.Source.Path)
}

// newLauncher creates the handoff for the configured messenger, applying
// handler and opener overrides.
func newLauncher(cfg *config.Config, logger *slog.Logger) (*messenger.Launcher, error) {
	reg := messenger.NewRegistry()
	messenger.RegisterBuiltins(reg)
	target, err := reg.Target(cfg.Messenger.App)
	if err != nil {
		return nil, err
	}
	if cfg.Messenger.Handler != "" {
		target.Handler = cfg.Messenger.Handler
	}
	if cfg.Messenger.Opener != "" {
		target.Opener = cfg.Messenger.Opener
	}
	return messenger.NewLauncher(target,
		messenger.WithTimeout(cfg.Messenger.Timeout),
		messenger.WithLogger(logger),
	), nil
}

// newGate creates the access gate backed by the grant store.
func newGate(cfg *config.Config) (*access.Gate, error) {
	mode, err := access.ParseMode(cfg.Access.Mode)
	if err != nil {
		return nil, err
	}
	return access.NewGate(mode, access.NewFileStore(cfg.Access.StateDir)), nil
}

// accessChecker abstracts access.Gate.Check for testing.
type accessChecker interface {
	Check(permission string) (access.Outcome, bool, error)
}

// contactLoader abstracts addressbook.Source for testing.
type contactLoader interface {
	Load(ctx context.Context) ([]contact.Contact, error)
}

// handoff abstracts messenger.Launcher for testing.
type handoff interface {
	Send(ctx context.Context, phone string) error
}

// errNoTTY is returned by pick when stdout is not a terminal.
var errNoTTY = errors.New("pick: requires a terminal (TTY); use 'contactos list' instead")

// ErrAccessDenied is returned by non-interactive commands when contacts
// access is denied or was never granted.
var ErrAccessDenied = errors.New("contacts permission denied")

// --- Pick command ---

// PickCmd opens the interactive contact picker.
type PickCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the picker TUI.
func (p *PickCmd) Run() error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return errNoTTY
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("pick: %w", err)
	}

	logger, closer, err := logging.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("pick: %w", err)
	}
	defer func() { _ = closer.Close() }()

	src, err := openSource(cfg)
	if err != nil {
		return fmt.Errorf("pick: %w", err)
	}
	launcher, err := newLauncher(cfg, logger)
	if err != nil {
		return fmt.Errorf("pick: %w", err)
	}
	gate, err := newGate(cfg)
	if err != nil {
		return fmt.Errorf("pick: %w", err)
	}

	// Cancelled on exit so an in-flight handoff does not outlive the TUI.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting picker",
		"version", version,
		"source", src.Name(),
		"messenger", launcher.Target().Name,
		"access", gate.Mode(),
	)

	m := picker.NewModel(
		picker.WithLoader(src),
		picker.WithHandoff(launcher),
		picker.WithAuthorizer(gate),
		picker.WithLogger(logger),
		picker.WithContext(ctx),
		picker.WithAppName("contactos"),
	)

	prog := tea.NewProgram(m, tea.WithAltScreen())
	return p.run(isTTY, prog)
}

// run executes the tea program, enabling testable wiring.
func (p *PickCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return errNoTTY
	}
	_, err := prog.Run()
	return err
}

// --- List command ---

// ListCmd prints contacts as tab-separated name and number lines.
type ListCmd struct {
	Query string `help:"Only show contacts whose name contains this text (case-insensitive)." short:"q"`
}

// Run executes the list command.
func (l *ListCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	src, err := openSource(cfg)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	gate, err := newGate(cfg)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return l.run(context.Background(), os.Stdout, gate, src)
}

// run lists contacts once access is granted, enabling testable wiring.
func (l *ListCmd) run(ctx context.Context, w io.Writer, gate accessChecker, src contactLoader) error {
	outcome, decided, err := gate.Check(access.ReadContacts)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if !decided {
		return fmt.Errorf("list: %w (run 'contactos grant' or 'contactos pick' to allow access)", ErrAccessDenied)
	}
	if outcome != access.Granted {
		return fmt.Errorf("list: %w", ErrAccessDenied)
	}

	full, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	matches := contact.Filter(full, l.Query)
	for _, c := range matches {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", c.Name, c.PhoneNumber)
	}
	if len(matches) == 0 && l.Query != "" {
		if s := contact.Suggest(full, l.Query); s != "" {
			_, _ = fmt.Fprintf(w, "No contacts match %q. Did you mean %s?\n", l.Query, s)
		}
	}
	return nil
}

// --- Send command ---

// SendCmd opens the messaging app addressed to a phone number.
type SendCmd struct {
	Phone     string `arg:"" help:"Phone number to message."`
	Messenger string `help:"Messaging app to use (whatsapp, sms, smsto)." short:"m"`
}

// Run executes the send command.
func (s *SendCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if s.Messenger != "" {
		cfg.Messenger.App = s.Messenger
	}

	logger, closer, err := logging.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer func() { _ = closer.Close() }()

	launcher, err := newLauncher(cfg, logger)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return s.run(ctx, os.Stdout, launcher, launcher.Target().DisplayName)
}

// run performs the handoff, enabling testable wiring.
func (s *SendCmd) run(ctx context.Context, w io.Writer, h handoff, appName string) error {
	if err := h.Send(ctx, s.Phone); err != nil {
		var nr *messenger.NotResolvableError
		if errors.As(err, &nr) {
			return fmt.Errorf("send: %s: %w", nr.Notice(), err)
		}
		return fmt.Errorf("send: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Opened %s for %s\n", appName, s.Phone)
	return nil
}

// --- Grant and revoke commands ---

// grantManager abstracts access.Gate grant bookkeeping for testing.
type grantManager interface {
	Mode() access.Mode
	Record(permission string, outcome access.Outcome) error
	Revoke(permission string) error
}

// GrantCmd remembers read-contacts access so the picker stops asking.
type GrantCmd struct{}

// Run executes the grant command.
func (g *GrantCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("grant: %w", err)
	}
	gate, err := newGate(cfg)
	if err != nil {
		return fmt.Errorf("grant: %w", err)
	}
	return g.run(os.Stdout, gate)
}

// run records the grant, enabling testable wiring.
func (g *GrantCmd) run(w io.Writer, gate grantManager) error {
	if mode := gate.Mode(); mode != access.ModeAsk {
		return fmt.Errorf("grant: access mode is %q; remembered grants only apply in %q mode", mode, access.ModeAsk)
	}
	if err := gate.Record(access.ReadContacts, access.Granted); err != nil {
		return fmt.Errorf("grant: %w", err)
	}
	_, _ = fmt.Fprintln(w, "Contacts access granted")
	return nil
}

// RevokeCmd forgets remembered read-contacts access.
type RevokeCmd struct{}

// Run executes the revoke command.
func (r *RevokeCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	gate, err := newGate(cfg)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	return r.run(os.Stdout, gate)
}

// run removes the grant, enabling testable wiring.
func (r *RevokeCmd) run(w io.Writer, gate grantManager) error {
	if err := gate.Revoke(access.ReadContacts); err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	_, _ = fmt.Fprintln(w, "Contacts access revoked; you will be asked again")
	return nil
}

// --- Import command ---

// ImportCmd copies a YAML address book into the SQLite contacts database.
type ImportCmd struct {
	File    string `arg:"" help:"YAML address book to import." type:"existingfile"`
	Replace bool   `help:"Delete existing contacts before importing."`
}

// contactStore abstracts addressbook.SQLiteSource writes for testing.
type contactStore interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, contacts ...contact.Contact) error
	Replace(ctx context.Context, contacts ...contact.Contact) error
}

// Run executes the import command.
func (i *ImportCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if cfg.Source.Kind != "sqlite" {
		return fmt.Errorf("import: source.kind is %q; import writes to a sqlite source", cfg.Source.Kind)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Source.Path), 0o755); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	db := addressbook.NewSQLiteSource(cfg.Source.Path)
	return i.run(context.Background(), os.Stdout, addressbook.NewYAMLSource(i.File), db, cfg.Source.Path)
}

// run reads from src and appends to dst, or overwrites it with --replace,
// enabling testable wiring.
func (i *ImportCmd) run(ctx context.Context, w io.Writer, src contactLoader, dst contactStore, dstName string) error {
	contacts, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := dst.Init(ctx); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	write, note := dst.Insert, ""
	if i.Replace {
		write, note = dst.Replace, " (existing contacts removed)"
	}
	if err := write(ctx, contacts...); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Imported %d contacts into %s%s\n", len(contacts), dstName, note)
	return nil
}

// --- Init command ---

// InitCmd writes the sample config and address book.
type InitCmd struct {
	Dir   string `help:"Directory to write into." default:".contactos"`
	Force bool   `help:"Overwrite existing files."`
}

// Run executes the init command. Samples in
// ~/.config/contactos/templates take precedence over the built-in ones.
func (c *InitCmd) Run() error {
	samples := contactos.OverlayFS(
		os.ExpandEnv("$HOME/.config/contactos/templates"),
		contactos.Templates,
	)
	return c.run(os.Stdout, samples)
}

// run copies the sample files from samples into c.Dir, enabling testable
// wiring. Existing files are kept unless Force is set.
func (c *InitCmd) run(w io.Writer, samples fs.FS) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	for _, name := range []string{contactos.ConfigTemplate, contactos.ContactsTemplate} {
		dst := filepath.Join(c.Dir, name)
		if _, err := os.Stat(dst); err == nil && !c.Force {
			_, _ = fmt.Fprintf(w, "Skipped %s (exists; use --force to overwrite)\n", dst)
			continue
		}

		data, err := fs.ReadFile(samples, name)
		if err != nil {
			return fmt.Errorf("init: reading sample %s: %w", name, err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Wrote %s\n", dst)
	}

	_, _ = fmt.Fprintf(w, "Next: contactos import %s\n", filepath.Join(c.Dir, contactos.ContactsTemplate))
	return nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitRefused = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var (
		nr *messenger.NotResolvableError
		le *messenger.LaunchError
		te *messenger.TimeoutError
	)
	if errors.As(err, &nr) || errors.As(err, &le) || errors.As(err, &te) ||
		errors.Is(err, messenger.ErrEmptyAddress) || errors.Is(err, ErrAccessDenied) {
		return exitRefused
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contactos"),
		kong.Description("Search your address book and open a conversation with a contact."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
