// Package app is the command surface shells call into. Every command is
// logged by name and outcome; arguments that may hold secrets never are.
package app

import (
	"context"
	"time"

	"github.com/fahmaliyi/passkeeper/logging"
	"github.com/fahmaliyi/passkeeper/passgen"
	"github.com/fahmaliyi/passkeeper/vault"
)

// Commands adapts shell requests to a Vault. Shells receive a *Commands
// explicitly; there is no package-level application handle.
type Commands struct {
	vault *vault.Vault
	log   logging.Logger
}

func New(v *vault.Vault, log logging.Logger) *Commands {
	if log == nil {
		log = logging.Discard()
	}
	return &Commands{vault: v, log: log}
}

func (c *Commands) run(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		c.log.Warn(ctx, "command failed", "cmd", name, "error", err, "elapsed", time.Since(start))
		return err
	}
	c.log.Info(ctx, "command ok", "cmd", name, "elapsed", time.Since(start))
	return nil
}

// Unlock derives the key from master. master is wiped.
func (c *Commands) Unlock(ctx context.Context, master []byte) error {
	return c.run(ctx, "unlock", func() error {
		return c.vault.Unlock(ctx, master)
	})
}

func (c *Commands) IsUnlocked() bool { return c.vault.IsUnlocked() }

func (c *Commands) Lock(ctx context.Context) {
	_ = c.run(ctx, "lock", func() error {
		c.vault.Lock()
		return nil
	})
}

func (c *Commands) Add(ctx context.Context, f vault.Fields) (vault.Record, error) {
	var rec vault.Record
	err := c.run(ctx, "add", func() (err error) {
		rec, err = c.vault.Add(ctx, f)
		return err
	})
	return rec, err
}

func (c *Commands) GetAll(ctx context.Context) ([]vault.Record, error) {
	var out []vault.Record
	err := c.run(ctx, "get_all", func() (err error) {
		out, err = c.vault.GetAll(ctx)
		return err
	})
	return out, err
}

func (c *Commands) Get(ctx context.Context, id string) (vault.Record, bool, error) {
	var (
		rec vault.Record
		ok  bool
	)
	err := c.run(ctx, "get", func() (err error) {
		rec, ok, err = c.vault.Get(ctx, id)
		return err
	})
	return rec, ok, err
}

func (c *Commands) Update(ctx context.Context, id string, f vault.Fields) (vault.Record, error) {
	var rec vault.Record
	err := c.run(ctx, "update", func() (err error) {
		rec, err = c.vault.Update(ctx, id, f)
		return err
	})
	return rec, err
}

func (c *Commands) Delete(ctx context.Context, id string) error {
	return c.run(ctx, "delete", func() error {
		return c.vault.Delete(ctx, id)
	})
}

func (c *Commands) Search(ctx context.Context, query string) ([]vault.Record, error) {
	var out []vault.Record
	err := c.run(ctx, "search", func() (err error) {
		out, err = c.vault.Search(ctx, query)
		return err
	})
	return out, err
}

func (c *Commands) GeneratePassword(ctx context.Context, length int, useSymbols, useNumbers, useUppercase bool) (string, error) {
	var pw string
	err := c.run(ctx, "generate_password", func() (err error) {
		pw, err = passgen.Generate(passgen.Options{
			Length:    length,
			Symbols:   useSymbols,
			Numbers:   useNumbers,
			Uppercase: useUppercase,
		})
		return err
	})
	return pw, err
}

func (c *Commands) Backup(ctx context.Context) error {
	return c.run(ctx, "backup", func() error {
		return c.vault.Backup(ctx)
	})
}

func (c *Commands) Restore(ctx context.Context) error {
	return c.run(ctx, "restore", func() error {
		return c.vault.Restore(ctx)
	})
}
