package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fahmaliyi/passkeeper/app"
	"github.com/fahmaliyi/passkeeper/vault"
)

const replHelp = "\nCommands: a=add, l=list, f TEXT=find, s N=show, e N=edit, c N=copy, d N=delete, g [LEN]=generate, q=quit"

// runREPL is the line-oriented shell. Item numbers refer to the most recent
// list or find output.
func runREPL(ctx context.Context, e *env) error {
	var idMap map[int]string

	for {
		fmt.Fprintln(e.out, replHelp)
		fmt.Fprint(e.out, "> ")

		line, err := readLine(e.in)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(e.out, "\nExiting.")
			return nil
		}
		if err != nil {
			return err
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "a":
			handleAdd(ctx, e)
			idMap = nil
		case "l":
			idMap = handleList(ctx, e, nil)
		case "f":
			query := strings.TrimSpace(strings.TrimPrefix(line, "f"))
			idMap = handleList(ctx, e, &query)
		case "g":
			handleGenerate(ctx, e, parts[1:])
		case "s", "e", "c", "d":
			if len(parts) < 2 {
				fmt.Fprintln(e.out, "Specify item number")
				continue
			}
			num, err := strconv.Atoi(parts[1])
			id, ok := idMap[num]
			if err != nil || !ok {
				fmt.Fprintln(e.out, "Invalid item number")
				continue
			}
			switch cmd {
			case "s":
				handleShow(ctx, e, id)
			case "e":
				handleEdit(ctx, e, id)
			case "c":
				handleCopy(ctx, e, id)
			case "d":
				handleDelete(ctx, e, id)
				idMap = nil
			}
		case "q":
			fmt.Fprintln(e.out, "Exiting.")
			return nil
		default:
			fmt.Fprintln(e.out, "Unknown command")
		}
	}
}

func reportErr(e *env, err error) {
	errColor.Fprintln(e.out, "Error:", app.Message(err))
}

// --- Individual command handlers ---

func handleAdd(ctx context.Context, e *env) {
	f, err := e.prompter().promptFields(vault.Fields{}, true)
	if err != nil {
		reportErr(e, err)
		return
	}
	if _, err := e.cmds.Add(ctx, f); err != nil {
		reportErr(e, err)
		return
	}
	okColor.Fprintln(e.out, "Entry added!")
}

func handleList(ctx context.Context, e *env, query *string) map[int]string {
	var (
		entries []vault.Record
		err     error
	)
	if query != nil {
		entries, err = e.cmds.Search(ctx, *query)
	} else {
		entries, err = e.cmds.GetAll(ctx)
	}
	if err != nil {
		reportErr(e, err)
		return nil
	}

	fmt.Fprintln(e.out, "Vault entries:")
	idMap := make(map[int]string)
	for i, r := range entries {
		num := i + 1
		idMap[num] = r.ID
		fmt.Fprintf(e.out, "%d) Title: %s | Username: %s\n", num, r.Title, r.Username)
	}
	return idMap
}

func handleShow(ctx context.Context, e *env, id string) {
	r, ok, err := e.cmds.Get(ctx, id)
	if err != nil {
		reportErr(e, err)
		return
	}
	if !ok {
		fmt.Fprintln(e.out, "Entry not found")
		return
	}
	e.printRecord(r, true)
}

func handleEdit(ctx context.Context, e *env, id string) {
	r, ok, err := e.cmds.Get(ctx, id)
	if err != nil {
		reportErr(e, err)
		return
	}
	if !ok {
		fmt.Fprintln(e.out, "Entry not found")
		return
	}
	f, err := e.prompter().promptFields(r.Fields(), true)
	if err != nil {
		reportErr(e, err)
		return
	}
	if _, err := e.cmds.Update(ctx, id, f); err != nil {
		reportErr(e, err)
		return
	}
	okColor.Fprintln(e.out, "Entry updated!")
}

func handleCopy(ctx context.Context, e *env, id string) {
	r, ok, err := e.cmds.Get(ctx, id)
	if err != nil {
		reportErr(e, err)
		return
	}
	if !ok {
		fmt.Fprintln(e.out, "Entry not found")
		return
	}
	if err := e.clip.WriteAll(r.Password); err != nil {
		reportErr(e, err)
		return
	}
	timeout := e.cfg.ClipboardTimeout
	if timeout <= 0 {
		fmt.Fprintln(e.out, "Secret copied to clipboard.")
		return
	}
	fmt.Fprintf(e.out, "Secret copied to clipboard. Clearing in %s...\n", timeout)
	secret := r.Password
	time.AfterFunc(timeout, func() {
		clearIfUnchanged(e.clip, secret)
	})
}

func handleDelete(ctx context.Context, e *env, id string) {
	if err := e.cmds.Delete(ctx, id); err != nil {
		reportErr(e, err)
		return
	}
	okColor.Fprintln(e.out, "Entry deleted!")
}

func handleGenerate(ctx context.Context, e *env, args []string) {
	length := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(e.out, "Invalid length")
			return
		}
		length = n
	}
	pw, err := e.cmds.GeneratePassword(ctx, length, true, true, true)
	if err != nil {
		reportErr(e, err)
		return
	}
	fmt.Fprintln(e.out, pw)
}
