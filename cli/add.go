package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fahmaliyi/passkeeper/vault"
)

// fieldPrompter asks for the fields of an entry. Current values are shown
// as defaults; an empty answer keeps them.
type fieldPrompter struct {
	in         *bufio.Reader
	out        io.Writer
	readSecret func(prompt string) ([]byte, error)
}

func (p fieldPrompter) promptFields(cur vault.Fields, askPassword bool) (vault.Fields, error) {
	var (
		f   = cur
		err error
	)

	if f.Title, err = prompt(p.in, p.out, "Title", cur.Title); err != nil {
		return f, err
	}
	if f.Username, err = prompt(p.in, p.out, "Username", cur.Username); err != nil {
		return f, err
	}

	if askPassword {
		label := "Password: "
		if cur.Password != "" {
			label = "Password (empty keeps current): "
		}
		secret, err := p.readSecret(label)
		if err != nil {
			return f, err
		}
		if s := strings.TrimSpace(string(secret)); s != "" {
			f.Password = s
		}
		vault.Zero(secret)
	}

	if f.URL, err = prompt(p.in, p.out, "URL (optional)", cur.URL); err != nil {
		return f, err
	}
	if f.Notes, err = prompt(p.in, p.out, "Notes (optional)", cur.Notes); err != nil {
		return f, err
	}
	return f, nil
}

// fieldFlags are the per-field flags shared by add and update.
type fieldFlags struct {
	title, username, url, notes string
	generate                    int
}

func (ff *fieldFlags) apply(f vault.Fields, changed func(string) bool) vault.Fields {
	if changed("title") {
		f.Title = ff.title
	}
	if changed("username") {
		f.Username = ff.username
	}
	if changed("url") {
		f.URL = ff.url
	}
	if changed("notes") {
		f.Notes = ff.notes
	}
	return f
}

func describe(r vault.Record) string {
	return fmt.Sprintf("%q (%s)", r.Title, r.ID)
}
