// Package cli implements the passkeeper shells: the cobra command tree, a
// line-oriented REPL and a bubbletea TUI. All of them drive an
// *app.Commands built once per invocation.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fahmaliyi/passkeeper/app"
	"github.com/fahmaliyi/passkeeper/config"
	"github.com/fahmaliyi/passkeeper/logging"
	"github.com/fahmaliyi/passkeeper/vault"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var Version = "0.1.0"

// Options wires the shells to their surroundings. Zero values fall back to
// the process stdio, the terminal and the system clipboard.
type Options struct {
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	ReadSecret func(prompt string) ([]byte, error)
	Clipboard  Clipboard
}

// env is the per-invocation state shared by sub-commands.
type env struct {
	in         *bufio.Reader
	out        io.Writer
	errOut     io.Writer
	readSecret func(prompt string) ([]byte, error)
	clip       Clipboard

	cfg  *config.Config
	log  logging.Logger
	cmds *app.Commands

	// flags
	configPath     string
	vaultPath      string
	backupDir      string
	logLevel       string
	verifyOnUnlock bool
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func NewRootCmd(opts Options) *cobra.Command {
	e := &env{
		out:        opts.Out,
		errOut:     opts.Err,
		readSecret: opts.ReadSecret,
		clip:       opts.Clipboard,
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	e.in = bufio.NewReader(opts.In)
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.errOut == nil {
		e.errOut = os.Stderr
	}
	if e.readSecret == nil {
		e.readSecret = secretReader(e.in)
	}
	if e.clip == nil {
		e.clip = systemClipboard{}
	}

	root := &cobra.Command{
		Use:   "passkeeper",
		Short: "Local encrypted password vault",
		Long: `passkeeper keeps named credentials (title, username, password, URL,
notes) in a single file encrypted under a key derived from your master
password. Nothing is ever written to disk in clear text.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "completion" || cmd.Name() == "help" {
				return nil
			}
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.cmds != nil {
				e.cmds.Lock(cmd.Context())
			}
		},
	}
	root.SetIn(opts.In)
	root.SetOut(e.out)
	root.SetErr(e.errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&e.configPath, "config", "c", "", "path to YAML config file")
	pf.StringVar(&e.vaultPath, "vault", "", "path to the encrypted vault file")
	pf.StringVar(&e.backupDir, "backup-dir", "", "directory the vault is backed up to")
	pf.StringVar(&e.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&e.verifyOnUnlock, "verify-on-unlock", false, "check the master password before running a command")

	root.AddCommand(
		newAddCmd(e),
		newListCmd(e),
		newGetCmd(e),
		newUpdateCmd(e),
		newDeleteCmd(e),
		newSearchCmd(e),
		newGenerateCmd(e),
		newCopyCmd(e),
		newBackupCmd(e),
		newRestoreCmd(e),
		newShellCmd(e),
		newTUICmd(e),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the vault
// and command surface.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("vault") {
		cfg.VaultPath = e.vaultPath
	}
	if flags.Changed("backup-dir") {
		cfg.BackupDir = e.backupDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = e.logLevel
	}
	if flags.Changed("verify-on-unlock") {
		cfg.VerifyOnUnlock = e.verifyOnUnlock
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, e.errOut)
	if err != nil {
		return err
	}

	v := vault.NewVault(cfg.VaultPath, cfg.KDFParams(),
		vault.WithLogger(log.With("component", "vault")),
		vault.WithVerifyOnUnlock(cfg.VerifyOnUnlock),
		vault.WithSyncer(&vault.DirSyncer{Dir: cfg.BackupDir}),
	)

	e.cfg = cfg
	e.log = log
	e.cmds = app.New(v, log.With("component", "app"))
	return nil
}

// unlock prompts for the master password. On first run the password is
// asked twice.
func (e *env) unlock(ctx context.Context) error {
	if _, err := os.Stat(e.cfg.VaultPath); errors.Is(err, fs.ErrNotExist) {
		warnColor.Fprintln(e.errOut, "No vault found. Setting up new master password.")
		first, err := e.readSecret("Set master password: ")
		if err != nil {
			return err
		}
		second, err := e.readSecret("Confirm master password: ")
		if err != nil {
			vault.Zero(first)
			return err
		}
		match := bytes.Equal(first, second)
		vault.Zero(second)
		if !match {
			vault.Zero(first)
			return errors.New("master passwords do not match")
		}
		return e.cmds.Unlock(ctx, first)
	}

	master, err := e.readSecret("Master password: ")
	if err != nil {
		return err
	}
	return e.cmds.Unlock(ctx, master)
}

func (e *env) printRecord(r vault.Record, showPassword bool) {
	pw := "********"
	if showPassword {
		pw = r.Password
	}
	fmt.Fprintf(e.out, "ID:       %s\n", r.ID)
	fmt.Fprintf(e.out, "Title:    %s\n", r.Title)
	fmt.Fprintf(e.out, "Username: %s\n", r.Username)
	fmt.Fprintf(e.out, "Password: %s\n", pw)
	if r.URL != "" {
		fmt.Fprintf(e.out, "URL:      %s\n", r.URL)
	}
	if r.Notes != "" {
		fmt.Fprintf(e.out, "Notes:    %s\n", r.Notes)
	}
}

func (e *env) printList(records []vault.Record) {
	if len(records) == 0 {
		dimColor.Fprintln(e.out, "No entries.")
		return
	}
	for _, r := range records {
		fmt.Fprintf(e.out, "%-36s  %-24s  %-24s  %s\n", r.ID, r.Title, r.Username, r.URL)
	}
}

// Execute runs the command tree and reports errors the way users see them.
func Execute(ctx context.Context, opts Options) int {
	root := NewRootCmd(opts)
	if err := root.ExecuteContext(ctx); err != nil {
		errOut := opts.Err
		if errOut == nil {
			errOut = os.Stderr
		}
		errColor.Fprintln(errOut, "Error:", app.Message(err))
		return 1
	}
	return 0
}
