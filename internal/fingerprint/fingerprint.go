// Package fingerprint computes fast partial-content hashes and string
// similarity scores used by duplicate detection.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// sampleSize is how many bytes are read from each end of the file.
// Full-file hashing is too slow for large documents and unnecessary for
// near-duplicate detection; head+tail+length survives the common case of
// PDF incremental updates that only rewrite the cross-reference table.
const sampleSize = 4096

// File returns the hex-encoded content fingerprint of the file at path:
// SHA-256 over the first 4096 bytes, the last 4096 bytes (when the file is
// longer than one sample), and the total length as a big-endian uint64.
//
// An error means "hash unknown"; callers must log and continue, never
// abort a batch over it.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()

	h := sha256.New()

	head := make([]byte, sampleSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("read head of %s: %w", path, err)
	}
	h.Write(head[:n])

	if size > sampleSize {
		tail := make([]byte, sampleSize)
		if _, err := f.ReadAt(tail, size-sampleSize); err != nil {
			return "", fmt.Errorf("read tail of %s: %w", path, err)
		}
		h.Write(tail)
	}

	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(size))
	h.Write(lenBuf[:])

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Text returns the hex-encoded SHA-256 digest of s.
// Used to key normalized-preview duplicate groups.
func Text(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
