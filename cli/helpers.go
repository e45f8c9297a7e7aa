package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"
)

// ReadPassword prompts on stderr and reads a line without echo.
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)

	return pw, err
}

// secretReader picks how secrets are read: without echo on a terminal, as
// a plain line when stdin is piped.
func secretReader(in *bufio.Reader) func(string) ([]byte, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return ReadPassword
	}
	return func(string) ([]byte, error) {
		line, err := readLine(in)
		return []byte(line), err
	}
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompt prints label and returns the trimmed answer, or def when the
// answer is empty.
func prompt(in *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := readLine(in)
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

// Clipboard is the part of the system clipboard the shells use.
type Clipboard interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }
func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }

// clearIfUnchanged empties the clipboard unless the user copied something
// else in the meantime.
func clearIfUnchanged(c Clipboard, secret string) {
	if cur, err := c.ReadAll(); err == nil && cur != secret {
		return
	}
	_ = c.WriteAll("")
}
