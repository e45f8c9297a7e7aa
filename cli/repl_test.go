package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestREPL_ListShowFind(t *testing.T) {
	h := newHarness(t, "0s")
	h.addBank()

	out, err := h.run([]string{"m"}, "l\ns 1\nf nomatch\nf bank\nq\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "1) Title: Bank | Username: alice")
	assert.Contains(t, out, "Password: s3cret")
	assert.Contains(t, out, "Exiting.")
}

func TestREPL_AddEditDelete(t *testing.T) {
	h := newHarness(t, "0s")
	h.addBank()

	input := "a\nMail\nbob\n\n\n" + // add, password from secrets
		"l\ne 2\n\ncarol\n\n\n" + // keep title, new username, keep password
		"d 1\nl\nq\n"
	_, err := h.run([]string{"m", "mailpw", ""}, input, "shell")
	require.NoError(t, err)

	all := h.records("m")
	require.Len(t, all, 1)
	assert.Equal(t, "Mail", all[0].Title)
	assert.Equal(t, "carol", all[0].Username)
	assert.Equal(t, "mailpw", all[0].Password)
}

func TestREPL_Copy(t *testing.T) {
	h := newHarness(t, "0s")
	h.addBank()

	out, err := h.run([]string{"m"}, "l\nc 1\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Secret copied to clipboard.")
	assert.Equal(t, "s3cret", h.clip.get())
}

func TestREPL_BadInput(t *testing.T) {
	h := newHarness(t, "0s")
	h.addBank()

	out, err := h.run([]string{"m"}, "x\ns\ns 7\ng abc\ng 4\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Unknown command")
	assert.Contains(t, out, "Specify item number")
	assert.Contains(t, out, "Invalid item number")
	assert.Contains(t, out, "Invalid length")
	assert.Contains(t, out, "Password length must be between 8 and 128.")
	assert.Contains(t, out, "Exiting.")
}
