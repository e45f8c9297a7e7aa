package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fahmaliyi/passkeeper/logging"
	"github.com/fahmaliyi/passkeeper/passgen"
	"github.com/fahmaliyi/passkeeper/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommands(t *testing.T) (*Commands, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, err := logging.New("debug", &buf)
	require.NoError(t, err)

	dir := t.TempDir()
	v := vault.NewVault(filepath.Join(dir, "passwords.enc"),
		&vault.KDFParams{Time: 1, Memory: 8 * 1024, Threads: 1},
		vault.WithSyncer(&vault.DirSyncer{Dir: filepath.Join(dir, "backup")}))
	return New(v, log), &buf
}

func TestCommands_Scenario(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCommands(t)

	require.NoError(t, c.Unlock(ctx, []byte("hunter2")))
	assert.True(t, c.IsUnlocked())

	rec, err := c.Add(ctx, vault.Fields{Title: "Bank", Username: "alice", Password: "p@ss"})
	require.NoError(t, err)

	c.Lock(ctx)
	assert.False(t, c.IsUnlocked())
	_, err = c.GetAll(ctx)
	require.ErrorIs(t, err, vault.ErrVaultLocked)

	require.NoError(t, c.Unlock(ctx, []byte("hunter2")))
	all, err := c.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Bank", all[0].Title)

	got, ok, err := c.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	upd, err := c.Update(ctx, rec.ID, vault.Fields{Title: "Bank", Username: "alice", Password: "n3w"})
	require.NoError(t, err)
	assert.Equal(t, "n3w", upd.Password)

	found, err := c.Search(ctx, "BANK")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, c.Backup(ctx))
	require.NoError(t, c.Delete(ctx, rec.ID))
	all, err = c.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, c.Restore(ctx))
	require.NoError(t, c.Unlock(ctx, []byte("hunter2")))
	all, err = c.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	c.Lock(ctx)
	require.NoError(t, c.Unlock(ctx, []byte("wrong")))
	_, err = c.GetAll(ctx)
	require.ErrorIs(t, err, vault.ErrWrongMasterPassword)
}

func TestCommands_LogsNoSecrets(t *testing.T) {
	ctx := context.Background()
	c, buf := newTestCommands(t)

	require.NoError(t, c.Unlock(ctx, []byte("MasterSecret")))
	_, err := c.Add(ctx, vault.Fields{Title: "Bank", Password: "EntrySecret"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "cmd=unlock")
	assert.Contains(t, out, "cmd=add")
	assert.NotContains(t, out, "MasterSecret")
	assert.NotContains(t, out, "EntrySecret")
}

func TestCommands_GeneratePassword(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCommands(t)

	pw, err := c.GeneratePassword(ctx, 8, false, false, false)
	require.NoError(t, err)
	assert.Len(t, pw, 8)
	assert.Equal(t, strings.ToLower(pw), pw)

	for _, n := range []int{7, 129} {
		_, err := c.GeneratePassword(ctx, n, true, true, true)
		require.ErrorIs(t, err, passgen.ErrInvalidLength)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&vault.OpError{Op: "add", Err: vault.ErrVaultLocked}, "Vault is locked. Unlock it first."},
		{&vault.OpError{Op: "get_all", Err: vault.ErrAuthenticationFailed}, "Wrong master password or the vault file was tampered with."},
		{fmt.Errorf("%w: %w", vault.ErrCorruptData, vault.ErrMalformedCiphertext), "The vault file is damaged and cannot be read."},
		{&vault.OpError{Op: "update", Err: vault.ErrNotFound}, "No entry with that id."},
		{passgen.ErrInvalidLength, "Password length must be between 8 and 128."},
		{errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err))
	}
}
