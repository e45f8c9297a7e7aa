// Package passgen generates random passwords from crypto/rand.
package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	MinLength = 8
	MaxLength = 128

	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits    = "0123456789"
	Symbols   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

var ErrInvalidLength = errors.New("passgen: length must be between 8 and 128")

type Options struct {
	Length    int
	Symbols   bool
	Numbers   bool
	Uppercase bool
}

// Generate returns a password drawn uniformly from lowercase letters plus
// every class enabled in opts. Each enabled class appears at least once.
func Generate(opts Options) (string, error) {
	if opts.Length < MinLength || opts.Length > MaxLength {
		return "", fmt.Errorf("%w (got %d)", ErrInvalidLength, opts.Length)
	}

	sets := []string{Lowercase}
	if opts.Uppercase {
		sets = append(sets, Uppercase)
	}
	if opts.Numbers {
		sets = append(sets, Digits)
	}
	if opts.Symbols {
		sets = append(sets, Symbols)
	}

	var charset string
	for _, s := range sets {
		charset += s
	}

	password := make([]byte, 0, opts.Length)
	for _, s := range sets {
		c, err := pick(s)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}
	for len(password) < opts.Length {
		c, err := pick(charset)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	if err := shuffle(password); err != nil {
		return "", err
	}
	return string(password), nil
}

func randIndex(n int) (int, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("passgen: random source: %w", err)
	}
	return int(i.Int64()), nil
}

func pick(set string) (byte, error) {
	i, err := randIndex(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

// shuffle is a Fisher–Yates shuffle.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
