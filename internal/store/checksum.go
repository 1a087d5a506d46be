package store

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const (
	// ChecksumPrefix is the prefix for xxHash64 checksums.
	ChecksumPrefix = "xxh64:"

	// checksumBufSize is the buffer size for streaming checksum computation.
	checksumBufSize = 32 * 1024 // 32KB
)

// Checksum represents a hex-encoded xxHash64 digest with the "xxh64:" prefix.
type Checksum string

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidChecksum  = errors.New("invalid checksum format")
)

// bufPool pools 32KB buffers for streaming checksum computation.
var bufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, checksumBufSize)
		return &buf
	},
}

// ComputeChecksum computes xxHash64 over a byte slice.
func ComputeChecksum(data []byte) Checksum {
	return FormatChecksum(xxhash.Sum64(data))
}

// ComputeFileChecksum opens a file and computes its checksum.
func ComputeFileChecksum(path string) (Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("compute file checksum %s: %w", path, err)
	}
	defer f.Close()

	bufPtr := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufPtr)

	h := xxhash.New()
	if _, err := io.CopyBuffer(h, f, *bufPtr); err != nil {
		return "", fmt.Errorf("compute file checksum %s: %w", path, err)
	}
	return FormatChecksum(h.Sum64()), nil
}

// VerifyChecksum checks data against expected.
func VerifyChecksum(data []byte, expected Checksum) error {
	if _, err := ParseChecksum(expected); err != nil {
		return err
	}
	if actual := ComputeChecksum(data); actual != expected {
		return fmt.Errorf("%w: expected %s got %s", ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// FormatChecksum formats a digest as a Checksum.
func FormatChecksum(sum uint64) Checksum {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sum)
	return Checksum(ChecksumPrefix + hex.EncodeToString(b[:]))
}

// ParseChecksum strips the prefix and returns the digest.
func ParseChecksum(c Checksum) (uint64, error) {
	s := string(c)
	if !strings.HasPrefix(s, ChecksumPrefix) {
		return 0, fmt.Errorf("%w: missing prefix %q", ErrInvalidChecksum, ChecksumPrefix)
	}
	hexStr := s[len(ChecksumPrefix):]
	if len(hexStr) != 16 {
		return 0, fmt.Errorf("%w: expected 16 hex chars, got %d", ErrInvalidChecksum, len(hexStr))
	}
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid hex: %v", ErrInvalidChecksum, err)
	}
	return binary.BigEndian.Uint64(raw), nil
}
