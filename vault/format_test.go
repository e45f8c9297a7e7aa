package vault

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_RoundTrip(t *testing.T) {
	p := &KDFParams{Time: 3, Memory: 256 * 1024, Threads: 2, Salt: []byte("0123456789abcdef")}

	raw, err := encodeHeader(headerFor(p))
	require.NoError(t, err)

	h, err := decodeHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, p, h.params())
}

func TestDecodeHeader_Rejects(t *testing.T) {
	good, err := encodeHeader(headerFor(&KDFParams{Time: 1, Memory: 1024, Threads: 1, Salt: []byte("salt")}))
	require.NoError(t, err)

	badMagic := append([]byte("XXXX"), good[4:]...)
	badVersion := append([]byte(nil), good...)
	badVersion[4] = 0x7f
	badAlgo := append([]byte(nil), good...)
	badAlgo[7] = 0x09

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"bad magic", badMagic},
		{"bad version", badVersion},
		{"unknown kdf", badAlgo},
		{"truncated salt", good[:len(good)-1]},
		{"trailing bytes", append(append([]byte(nil), good...), 0x00)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeHeader(tt.raw)
			require.ErrorIs(t, err, ErrCorruptData)
		})
	}
}

func TestDecodeFile(t *testing.T) {
	hdr, err := encodeHeader(headerFor(&KDFParams{Time: 1, Memory: 1024, Threads: 1, Salt: []byte("salt")}))
	require.NoError(t, err)

	gotHdr, h, blob, err := decodeFile(encodeFile(hdr, "YmxvYg=="))
	require.NoError(t, err)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, []byte("salt"), h.Salt)
	assert.Equal(t, "YmxvYg==", blob)

	_, _, _, err = decodeFile([]byte(base64.StdEncoding.EncodeToString(hdr)))
	require.ErrorIs(t, err, ErrCorruptData, "missing body line")

	_, _, _, err = decodeFile([]byte("!!!\nYmxvYg=="))
	require.ErrorIs(t, err, ErrCorruptData)
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passwords.enc")

	require.NoError(t, atomicWriteFile(path, []byte("one"), 0600))
	require.NoError(t, atomicWriteFile(path, []byte("two"), 0600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
	}
}
