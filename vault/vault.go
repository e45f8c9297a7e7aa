package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fahmaliyi/passkeeper/logging"
)

// Vault owns the encrypted record file and the lock state. A single mutex
// serializes unlock, lock and every load-modify-save sequence, so two
// concurrent mutations can never overwrite each other.
type Vault struct {
	Filename string

	mu     sync.Mutex
	kdf    *KDFParams // cost settings for a vault created by this process
	params *KDFParams // params the current key was derived with
	cipher *Cipher
	verify bool
	syncer Syncer
	now    func() time.Time
	log    logging.Logger
}

type Option func(*Vault)

// WithVerifyOnUnlock makes Unlock decrypt the existing file once and fail
// fast on a wrong master password instead of on the first read.
func WithVerifyOnUnlock(verify bool) Option {
	return func(v *Vault) { v.verify = verify }
}

func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(v *Vault) { v.log = l }
}

func WithSyncer(s Syncer) Option {
	return func(v *Vault) { v.syncer = s }
}

func NewVault(filename string, kdf *KDFParams, opts ...Option) *Vault {
	if kdf == nil {
		kdf = DefaultKDFParams()
	}
	v := &Vault{
		Filename: filename,
		kdf:      kdf,
		now:      time.Now,
		log:      logging.Discard(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *Vault) SetSyncer(s Syncer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.syncer = s
}

// Unlock derives the key for password and moves the vault to the unlocked
// state. Any previous key is discarded first. Unless verification on unlock
// is enabled, the password is not checked here: a wrong one surfaces as
// ErrWrongMasterPassword on the first record operation.
func (v *Vault) Unlock(ctx context.Context, password []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lockLocked()

	params, err := v.readParams()
	if err != nil {
		return opErr("unlock", err)
	}
	c, err := NewCipher(password, params)
	if err != nil {
		return opErr("unlock", err)
	}

	if v.verify {
		if _, err := v.load(c); err != nil {
			c.Destroy()
			v.log.Warn(ctx, "unlock rejected", "path", v.Filename, "error", err)
			return opErr("unlock", err)
		}
	}

	v.cipher = c
	v.params = params
	v.log.Debug(ctx, "vault unlocked", "path", v.Filename)
	return nil
}

// Lock discards the key. Calling it on a locked vault is a no-op.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lockLocked()
}

func (v *Vault) lockLocked() {
	v.cipher.Destroy()
	v.cipher = nil
	v.params = nil
}

func (v *Vault) IsUnlocked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cipher != nil
}

// readParams recovers the KDF parameters from the file header, or makes
// fresh ones when there is no vault yet.
func (v *Vault) readParams() (*KDFParams, error) {
	content, err := os.ReadFile(v.Filename)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(content) == 0) {
		return NewKDFParams(v.kdf)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	_, h, _, err := decodeFile(content)
	if err != nil {
		return nil, err
	}
	return h.params(), nil
}

// load reads and decrypts the whole record set. A missing or empty file is
// an empty set.
func (v *Vault) load(c *Cipher) ([]Record, error) {
	content, err := os.ReadFile(v.Filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if len(content) == 0 {
		return nil, nil
	}

	hdr, _, blob, err := decodeFile(content)
	if err != nil {
		return nil, err
	}
	pt, err := c.Decrypt(blob, hdr)
	switch {
	case errors.Is(err, ErrAuthenticationFailed):
		return nil, ErrWrongMasterPassword
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	defer zero(pt)

	var set recordSet
	if err := json.Unmarshal(pt, &set); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	return set.Passwords, nil
}

// save encrypts the full record set and replaces the file in one rename.
func (v *Vault) save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	hdr, err := encodeHeader(headerFor(v.params))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncryption, err)
	}
	pt, err := json.Marshal(recordSet{Passwords: records})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncryption, err)
	}
	blob, err := v.cipher.Encrypt(pt, hdr)
	zero(pt)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(v.Filename), 0700); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := atomicWriteFile(v.Filename, encodeFile(hdr, blob), 0600); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// view runs fn over the current record set under the store lock.
func (v *Vault) view(op string, fn func([]Record) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cipher == nil {
		return opErr(op, ErrVaultLocked)
	}
	records, err := v.load(v.cipher)
	if err != nil {
		return opErr(op, err)
	}
	return opErr(op, fn(records))
}

// modify is the load-modify-save protocol. fn returns the new record set
// and whether it changed; an unchanged set is not written back.
func (v *Vault) modify(ctx context.Context, op string, fn func([]Record) ([]Record, bool, error)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cipher == nil {
		return opErr(op, ErrVaultLocked)
	}
	records, err := v.load(v.cipher)
	if err != nil {
		return opErr(op, err)
	}
	records, changed, err := fn(records)
	if err != nil {
		return opErr(op, err)
	}
	if !changed {
		return nil
	}
	if err := v.save(records); err != nil {
		return opErr(op, err)
	}
	v.log.Debug(ctx, "vault saved", "op", op, "records", len(records))
	return nil
}

// CRUD operations

func (v *Vault) Add(ctx context.Context, f Fields) (Record, error) {
	rec := NewRecord(f, v.now())
	err := v.modify(ctx, "add", func(records []Record) ([]Record, bool, error) {
		return append(records, rec), true, nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (v *Vault) GetAll(ctx context.Context) ([]Record, error) {
	var out []Record
	err := v.view("get_all", func(records []Record) error {
		out = records
		return nil
	})
	if out == nil && err == nil {
		out = []Record{}
	}
	return out, err
}

// Get returns the record with id. The boolean is false when no record has
// that id.
func (v *Vault) Get(ctx context.Context, id string) (Record, bool, error) {
	var (
		out   Record
		found bool
	)
	err := v.view("get", func(records []Record) error {
		for _, r := range records {
			if r.ID == id {
				out, found = r, true
				return nil
			}
		}
		return nil
	})
	return out, found, err
}

func (v *Vault) Update(ctx context.Context, id string, f Fields) (Record, error) {
	var updated Record
	err := v.modify(ctx, "update", func(records []Record) ([]Record, bool, error) {
		for i := range records {
			if records[i].ID == id {
				records[i].ApplyUpdate(f, v.now())
				updated = records[i]
				return records, true, nil
			}
		}
		return nil, false, ErrNotFound
	})
	if err != nil {
		return Record{}, err
	}
	return updated, nil
}

// Delete removes every record with id. An unknown id is not an error.
func (v *Vault) Delete(ctx context.Context, id string) error {
	return v.modify(ctx, "delete", func(records []Record) ([]Record, bool, error) {
		kept := records[:0]
		for _, r := range records {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		return kept, len(kept) != len(records), nil
	})
}

// Search returns, in stored order, the records whose title, username or URL
// contain query, ignoring case.
func (v *Vault) Search(ctx context.Context, query string) ([]Record, error) {
	out := []Record{}
	err := v.view("search", func(records []Record) error {
		for _, r := range records {
			if r.Matches(query) {
				out = append(out, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Backup pushes the encrypted file to the configured syncer.
func (v *Vault) Backup(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.syncer == nil {
		return opErr("backup", errNoSyncer)
	}
	if err := v.syncer.Push(v.Filename); err != nil {
		return opErr("backup", err)
	}
	v.log.Info(ctx, "vault backed up", "path", v.Filename)
	return nil
}

// Restore pulls the mirrored file over the local one and locks the vault,
// since the restored file may have been written with another salt.
func (v *Vault) Restore(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.syncer == nil {
		return opErr("restore", errNoSyncer)
	}
	if err := v.syncer.Pull(v.Filename); err != nil {
		return opErr("restore", err)
	}
	v.lockLocked()
	v.log.Info(ctx, "vault restored", "path", v.Filename)
	return nil
}
