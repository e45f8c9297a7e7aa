package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fahmaliyi/passkeeper/vault"
	"github.com/spf13/cobra"
)

func (e *env) prompter() fieldPrompter {
	return fieldPrompter{in: e.in, out: e.out, readSecret: e.readSecret}
}

func addFieldFlags(cmd *cobra.Command, ff *fieldFlags) {
	fs := cmd.Flags()
	fs.StringVar(&ff.title, "title", "", "entry title")
	fs.StringVar(&ff.username, "username", "", "account username")
	fs.StringVar(&ff.url, "url", "", "site URL")
	fs.StringVar(&ff.notes, "notes", "", "free-form notes")
	fs.IntVar(&ff.generate, "generate", 0, "generate a password of this length instead of prompting")
}

func newAddCmd(e *env) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		Long: `Add an entry. Without --title the fields are asked for interactively;
the password is always read without echo unless --generate is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}

			f := ff.apply(vault.Fields{}, cmd.Flags().Changed)
			if ff.generate > 0 {
				pw, err := e.cmds.GeneratePassword(ctx, ff.generate, true, true, true)
				if err != nil {
					return err
				}
				f.Password = pw
			}

			var err error
			switch {
			case !cmd.Flags().Changed("title"):
				f, err = e.prompter().promptFields(f, f.Password == "")
			case f.Password == "":
				var secret []byte
				secret, err = e.readSecret("Password: ")
				f.Password = strings.TrimSpace(string(secret))
				vault.Zero(secret)
			}
			if err != nil {
				return err
			}

			rec, err := e.cmds.Add(ctx, f)
			if err != nil {
				return err
			}
			okColor.Fprintf(e.out, "Entry %s added.\n", describe(rec))
			return nil
		},
	}
	addFieldFlags(cmd, &ff)
	return cmd
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all entries in stored order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}
			records, err := e.cmds.GetAll(ctx)
			if err != nil {
				return err
			}
			e.printList(records)
			return nil
		},
	}
}

func newGetCmd(e *env) *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}
			rec, ok, err := e.cmds.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("get %s: %w", args[0], vault.ErrNotFound)
			}
			e.printRecord(rec, show)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&show, "show-password", "s", false, "print the password in clear")
	return cmd
}

func newUpdateCmd(e *env) *cobra.Command {
	var (
		ff        fieldFlags
		askSecret bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an entry",
		Long: `Change an entry. Without field flags every field is asked for, with the
current value as default. All fields are replaced on update.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}
			cur, ok, err := e.cmds.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("update %s: %w", args[0], vault.ErrNotFound)
			}

			flags := cmd.Flags()
			f := ff.apply(cur.Fields(), flags.Changed)
			if ff.generate > 0 {
				pw, err := e.cmds.GeneratePassword(ctx, ff.generate, true, true, true)
				if err != nil {
					return err
				}
				f.Password = pw
			}

			interactive := !flags.Changed("title") && !flags.Changed("username") &&
				!flags.Changed("url") && !flags.Changed("notes") &&
				!flags.Changed("generate") && !askSecret
			switch {
			case interactive:
				f, err = e.prompter().promptFields(f, true)
			case askSecret:
				var secret []byte
				secret, err = e.readSecret("New password: ")
				if s := strings.TrimSpace(string(secret)); s != "" {
					f.Password = s
				}
				vault.Zero(secret)
			}
			if err != nil {
				return err
			}

			rec, err := e.cmds.Update(ctx, args[0], f)
			if err != nil {
				return err
			}
			okColor.Fprintf(e.out, "Entry %s updated.\n", describe(rec))
			return nil
		},
	}
	addFieldFlags(cmd, &ff)
	cmd.Flags().BoolVar(&askSecret, "password", false, "prompt for a new password")
	return cmd
}

func newDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}
			if !yes {
				ans, err := prompt(e.in, e.out, fmt.Sprintf("Delete %s? (y/N)", args[0]), "")
				if err != nil {
					return err
				}
				if !strings.EqualFold(ans, "y") && !strings.EqualFold(ans, "yes") {
					fmt.Fprintln(e.out, "Aborted.")
					return nil
				}
			}
			if err := e.cmds.Delete(ctx, args[0]); err != nil {
				return err
			}
			okColor.Fprintln(e.out, "Entry deleted!")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newSearchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find entries by title, username or URL (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}
			records, err := e.cmds.Search(ctx, args[0])
			if err != nil {
				return err
			}
			e.printList(records)
			return nil
		},
	}
}

func newGenerateCmd(e *env) *cobra.Command {
	var (
		length                      int
		symbols, numbers, uppercase bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := e.cmds.GeneratePassword(cmd.Context(), length, symbols, numbers, uppercase)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, pw)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&length, "length", "l", 20, "password length (8-128)")
	fs.BoolVar(&symbols, "symbols", true, "include symbols")
	fs.BoolVar(&numbers, "numbers", true, "include digits")
	fs.BoolVar(&uppercase, "uppercase", true, "include uppercase letters")
	return cmd
}

func newCopyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy an entry's password to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}
			rec, ok, err := e.cmds.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("copy %s: %w", args[0], vault.ErrNotFound)
			}
			if err := e.clip.WriteAll(rec.Password); err != nil {
				return fmt.Errorf("clipboard: %w", err)
			}
			// The vault is not needed while we wait.
			e.cmds.Lock(ctx)

			timeout := e.cfg.ClipboardTimeout
			if timeout == 0 {
				okColor.Fprintln(e.out, "Password copied to clipboard.")
				return nil
			}
			okColor.Fprintf(e.out, "Password copied to clipboard. Clearing in %s...\n", timeout)
			t := time.NewTimer(timeout)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
			}
			clearIfUnchanged(e.clip, rec.Password)
			return nil
		},
	}
}

func newBackupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the encrypted vault to the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.cmds.Backup(cmd.Context()); err != nil {
				return err
			}
			okColor.Fprintf(e.out, "Vault backed up to %s.\n", e.cfg.BackupDir)
			return nil
		},
	}
}

func newRestoreCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the vault with the copy in the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ans, err := prompt(e.in, e.out, "Overwrite the current vault with the backup? (y/N)", "")
				if err != nil {
					return err
				}
				if !strings.EqualFold(ans, "y") && !strings.EqualFold(ans, "yes") {
					fmt.Fprintln(e.out, "Aborted.")
					return nil
				}
			}
			if err := e.cmds.Restore(cmd.Context()); err != nil {
				return err
			}
			okColor.Fprintln(e.out, "Vault restored.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newShellCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive command loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}
			return runREPL(ctx, e)
		},
	}
}

func newTUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Full-screen terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.unlock(ctx); err != nil {
				return err
			}
			return RunTUI(ctx, e.cmds, e.clip, e.cfg.ClipboardTimeout)
		},
	}
}
