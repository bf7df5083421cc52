package provenance

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zeebo/blake3"
)

// defaultChunkSize amortizes read syscalls while keeping memory use
// independent of file size.
const defaultChunkSize = 1 << 20

// Peeker produces a format-specific summary of an asset file. A Peeker
// is optional; any error from it simply omits the peek field.
type Peeker interface {
	Peek(ctx context.Context, path string) (map[string]any, error)
}

// Fingerprinter computes integrity fingerprints for explicitly named
// files. Failures are captured per entry; a bad path never aborts the
// batch.
type Fingerprinter struct {
	peeker    Peeker
	chunkSize int
}

// NewFingerprinter returns a Fingerprinter with the default chunk size.
// peeker may be nil.
func NewFingerprinter(peeker Peeker) *Fingerprinter {
	return &Fingerprinter{peeker: peeker, chunkSize: defaultChunkSize}
}

// Fingerprint stats and hashes each path. The result maps every input
// path to either a record or the captured error text.
func (f *Fingerprinter) Fingerprint(ctx context.Context, paths []string) map[string]AssetEntry {
	result := make(map[string]AssetEntry, len(paths))
	for _, path := range paths {
		rec, err := f.fingerprintOne(ctx, path)
		if err != nil {
			result[path] = AssetEntry{Err: err.Error()}
			continue
		}
		result[path] = AssetEntry{Record: rec}
	}
	return result
}

func (f *Fingerprinter) fingerprintOne(ctx context.Context, path string) (*AssetRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	digest, err := f.hashFile(path)
	if err != nil {
		return nil, err
	}

	atime, ctime := statTimes(info)
	rec := &AssetRecord{
		Size:   info.Size(),
		ATime:  atime.Format(time.RFC3339),
		MTime:  info.ModTime().Format(time.RFC3339),
		CTime:  ctime.Format(time.RFC3339),
		BLAKE3: digest,
	}

	if f.peeker != nil {
		// Best effort: an unavailable or failing summarizer just means
		// no peek field.
		if peek, err := f.peeker.Peek(ctx, path); err == nil && len(peek) > 0 {
			rec.Peek = peek
		}
	}
	return rec, nil
}

// hashFile streams the file through BLAKE3 in fixed-size chunks. The
// digest is chunk-boundary independent, so the chunk size is purely an
// I/O tuning knob.
func (f *Fingerprinter) hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := blake3.New()
	buf := make([]byte, f.chunkSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hashing %s: %w", path, err)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
