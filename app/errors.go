package app

import (
	"errors"

	"github.com/fahmaliyi/passkeeper/passgen"
	"github.com/fahmaliyi/passkeeper/vault"
)

// Message turns a command error into the text a shell shows the user.
// Authentication failures get one message whatever their cause.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, vault.ErrVaultLocked):
		return "Vault is locked. Unlock it first."
	case errors.Is(err, vault.ErrWrongMasterPassword):
		return "Wrong master password or the vault file was tampered with."
	case errors.Is(err, vault.ErrCorruptData):
		return "The vault file is damaged and cannot be read."
	case errors.Is(err, vault.ErrNotFound):
		return "No entry with that id."
	case errors.Is(err, vault.ErrNoBackup):
		return "No backup found."
	case errors.Is(err, vault.ErrIO):
		return "Could not read or write the vault file: " + err.Error()
	case errors.Is(err, passgen.ErrInvalidLength):
		return "Password length must be between 8 and 128."
	}
	return err.Error()
}
