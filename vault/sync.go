package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	ErrNoBackup = errors.New("vault: no backup found")
	errNoSyncer = errors.New("vault: no syncer configured")
)

type Syncer interface {
	// Pull replaces the local encrypted vault with the mirrored copy
	Pull(vaultPath string) error

	// Push copies the local encrypted vault to the mirror
	Push(vaultPath string) error
}

// DirSyncer mirrors the encrypted vault file into a local directory, such
// as a mounted backup drive. Only ciphertext is ever copied.
type DirSyncer struct {
	Dir string
}

func (d *DirSyncer) target(vaultPath string) string {
	return filepath.Join(d.Dir, filepath.Base(vaultPath))
}

// Push copies the encrypted vault into Dir
func (d *DirSyncer) Push(vaultPath string) error {
	data, err := os.ReadFile(vaultPath)
	if err != nil {
		return fmt.Errorf("failed to read local vault: %w", err)
	}
	if err := os.MkdirAll(d.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}
	if err := atomicWriteFile(d.target(vaultPath), data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Pull restores the mirrored copy over the local vault. The copy must at
// least carry a readable header.
func (d *DirSyncer) Pull(vaultPath string) error {
	data, err := os.ReadFile(d.target(vaultPath))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoBackup
	}
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if _, _, _, err := decodeFile(data); err != nil {
		return fmt.Errorf("backup rejected: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(vaultPath), 0700); err != nil {
		return fmt.Errorf("failed to create vault dir: %w", err)
	}
	if err := atomicWriteFile(vaultPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write local vault: %w", err)
	}
	return nil
}
