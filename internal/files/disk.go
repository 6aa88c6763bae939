package files

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs as plain files below Root.
type DiskStore struct {
	Root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", abs, err)
	}
	return &DiskStore{Root: abs}, nil
}

func (d *DiskStore) path(key string) (string, error) {
	p := filepath.Join(d.Root, filepath.FromSlash(key))
	if p == d.Root || !strings.HasPrefix(p, d.Root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return p, nil
}

// Put streams into a sibling .tmp file and renames it into place once the
// copy completes.
func (d *DiskStore) Put(_ context.Context, key string, r io.Reader) (Blob, error) {
	dest, err := d.path(key)
	if err != nil {
		return Blob{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Blob{}, fmt.Errorf("failed to create blob directory: %w", err)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to create temp blob: %w", err)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return Blob{}, fmt.Errorf("failed to write blob: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return Blob{}, fmt.Errorf("failed to move blob into place: %w", err)
	}

	return Blob{Size: n, Sha256: hex.EncodeToString(h.Sum(nil))}, nil
}

func (d *DiskStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

func (d *DiskStore) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
