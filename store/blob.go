package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// ErrBlobNotFound is returned by Blob.Open when no object exists under the
// given name.
var ErrBlobNotFound = errors.New("blob not found")

// Blob is the byte-storage side of the content store. The disk backend is
// the default; a MinIO-backed implementation lives in the services package.
type Blob interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	Remove(ctx context.Context, name string) error
}

// DiskBlob stores one file per object in a flat directory.
type DiskBlob struct {
	dir string
}

func NewDiskBlob(dir string) (*DiskBlob, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskBlob{dir: dir}, nil
}

// Put writes to a temp file and renames it into place, so concurrent
// writers of the same content never leave a half-written object behind.
func (d *DiskBlob) Put(ctx context.Context, name string, data []byte, contentType string) error {
	tmp, err := os.CreateTemp(d.dir, "upload-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(d.dir, name))
}

func (d *DiskBlob) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	f, err := os.Open(filepath.Join(d.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrBlobNotFound
		}
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (d *DiskBlob) Remove(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(d.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
