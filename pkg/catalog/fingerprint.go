package catalog

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// fingerprintHead is how much of the file participates in the hash.
// Hashing whole video files would make rescans I/O bound.
const fingerprintHead = 64 * 1024

// FileFingerprint returns MD5(first 64KiB + size + mtime). It changes
// when the file changes without reading gigabytes per file.
func FileFingerprint(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("catalog: stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, fingerprintHead)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("catalog: read %s: %w", path, err)
	}

	h := md5.New()
	h.Write(head[:n])
	io.WriteString(h, strconv.FormatInt(st.Size(), 10))
	io.WriteString(h, st.ModTime().UTC().Format(time.RFC3339Nano))
	return hex.EncodeToString(h.Sum(nil)), nil
}
