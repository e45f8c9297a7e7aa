package vault

import "errors"

const (
	MasterKeyLen = 32
	FEKLen       = 32
	NonceLen     = 12
	SaltLen      = 16
	Magic        = "PKV1"
	Version      = 0x01

	kdfArgon2ID = 0x01
)

var (
	ErrVaultLocked          = errors.New("vault: locked")
	ErrAuthenticationFailed = errors.New("vault: authentication failed")
	// ErrWrongMasterPassword is reported for any AEAD verification failure;
	// a wrong key and tampered data are indistinguishable.
	ErrWrongMasterPassword = ErrAuthenticationFailed
	ErrCorruptData         = errors.New("vault: corrupt data")
	ErrNotFound            = errors.New("vault: record not found")
	ErrIO                  = errors.New("vault: i/o failure")

	ErrMalformedCiphertext = errors.New("vault: malformed ciphertext")
	ErrEncoding            = errors.New("vault: plaintext is not valid utf-8")
	ErrEncryption          = errors.New("vault: encryption failed")
)

// OpError records the store operation that failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return "vault " + e.Op + ": no error provided"
	}
	return "vault " + e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

type KDFParams struct {
	Time, Memory uint32
	Threads      uint8
	Salt         []byte
}

type fileHeader struct {
	Flags        uint16
	KDFAlgo      uint8
	ArgonTime    uint32
	ArgonMemory  uint32
	ArgonThreads uint8
	Salt         []byte
}

// recordSet is the serialized plaintext of the vault file.
type recordSet struct {
	Passwords []Record `json:"passwords"`
}
