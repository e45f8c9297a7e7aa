package vault

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func headerFor(p *KDFParams) fileHeader {
	return fileHeader{
		Flags:        0,
		KDFAlgo:      kdfArgon2ID,
		ArgonTime:    p.Time,
		ArgonMemory:  p.Memory,
		ArgonThreads: p.Threads,
		Salt:         p.Salt,
	}
}

func (h fileHeader) params() *KDFParams {
	return &KDFParams{
		Time:    h.ArgonTime,
		Memory:  h.ArgonMemory,
		Threads: h.ArgonThreads,
		Salt:    append([]byte(nil), h.Salt...),
	}
}

func encodeHeader(h fileHeader) ([]byte, error) {
	buf := &bytes.Buffer{}

	buf.WriteString(Magic)
	buf.WriteByte(Version)

	if err := binary.Write(buf, binary.BigEndian, h.Flags); err != nil {
		return nil, err
	}
	buf.WriteByte(h.KDFAlgo)

	// Argon2 params
	if err := binary.Write(buf, binary.BigEndian, h.ArgonTime); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, h.ArgonMemory); err != nil {
		return nil, err
	}
	buf.WriteByte(h.ArgonThreads)

	if len(h.Salt) == 0 || len(h.Salt) > 255 {
		return nil, errors.New("invalid salt length")
	}
	buf.WriteByte(uint8(len(h.Salt)))
	buf.Write(h.Salt)

	return buf.Bytes(), nil
}

func decodeHeader(raw []byte) (fileHeader, error) {
	var h fileHeader
	if len(raw) < 4+1+2+1+4+4+1+1 {
		return h, ErrCorruptData
	}

	buf := bytes.NewReader(raw)

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(buf, magic); err != nil || string(magic) != Magic {
		return h, ErrCorruptData
	}

	var version byte
	if err := binary.Read(buf, binary.BigEndian, &version); err != nil || version != Version {
		return h, ErrCorruptData
	}

	fields := []any{&h.Flags, &h.KDFAlgo, &h.ArgonTime, &h.ArgonMemory, &h.ArgonThreads}
	for _, f := range fields {
		if err := binary.Read(buf, binary.BigEndian, f); err != nil {
			return h, ErrCorruptData
		}
	}
	if h.KDFAlgo != kdfArgon2ID {
		return h, ErrCorruptData
	}

	var saltLen uint8
	if err := binary.Read(buf, binary.BigEndian, &saltLen); err != nil || saltLen == 0 {
		return h, ErrCorruptData
	}
	h.Salt = make([]byte, saltLen)
	if _, err := io.ReadFull(buf, h.Salt); err != nil {
		return h, ErrCorruptData
	}
	if buf.Len() != 0 {
		return h, ErrCorruptData
	}

	return h, nil
}

// encodeFile renders the on-disk form: base64 header line, then the
// cipher blob line.
func encodeFile(hdr []byte, blob string) []byte {
	var b strings.Builder
	b.WriteString(base64.StdEncoding.EncodeToString(hdr))
	b.WriteByte('\n')
	b.WriteString(blob)
	b.WriteByte('\n')
	return []byte(b.String())
}

// decodeFile splits the file into raw header bytes, the parsed header and
// the cipher blob. The raw header is the AEAD associated data.
func decodeFile(content []byte) ([]byte, fileHeader, string, error) {
	text := strings.TrimSpace(string(content))
	hdrLine, blob, ok := strings.Cut(text, "\n")
	if !ok {
		return nil, fileHeader{}, "", ErrCorruptData
	}
	hdr, err := base64.StdEncoding.DecodeString(strings.TrimSpace(hdrLine))
	if err != nil {
		return nil, fileHeader{}, "", ErrCorruptData
	}
	h, err := decodeHeader(hdr)
	if err != nil {
		return nil, fileHeader{}, "", err
	}
	return hdr, h, strings.TrimSpace(blob), nil
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".pkv-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if err := tmpFile.Chmod(perm); err != nil {
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
