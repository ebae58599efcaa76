// Package store implements the content-addressed image store: blobs keyed
// by the SHA-256 of their bytes, with a database index carrying filename
// and MIME metadata. Uploading the same bytes twice always yields the same
// id and never a second copy.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"log"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
)

// ErrNotFound is returned when no index entry exists for an id, or when
// the entry exists but its backing blob is gone.
var ErrNotFound = errors.New("image not found")

const thumbMaxPx = 512

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type Store struct {
	db   *gorm.DB
	blob Blob
}

func New(db *gorm.DB, blob Blob) *Store {
	return &Store{db: db, blob: blob}
}

// HashBytes returns the content id for a byte sequence: the hex SHA-256
// digest. Deterministic across processes and restarts.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Put stores the bytes under their content hash and returns the id. If an
// index row for the hash already exists the call returns immediately
// without touching the blob or the index. Otherwise the blob is written
// first and the index row second, so a crash in between leaves at worst an
// orphan file that a later identical upload repairs.
func (s *Store) Put(ctx context.Context, data []byte, declaredFilename, declaredMime string) (string, error) {
	id := HashBytes(data)

	var existing models.StoredImage
	err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	filename := id + extensionFor(declaredFilename, declaredMime)
	if err := s.blob.Put(ctx, filename, data, declaredMime); err != nil {
		return "", err
	}

	s.putThumbnail(ctx, id, data)

	row := models.StoredImage{
		ID:        id,
		Filename:  filename,
		Mime:      declaredMime,
		CreatedAt: time.Now().UTC(),
	}
	// Concurrent identical uploads race to this insert; whoever loses the
	// race must still succeed with the same id.
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return "", err
	}
	return id, nil
}

// Get is a pure index lookup.
func (s *Store) Get(ctx context.Context, id string) (models.StoredImage, error) {
	var img models.StoredImage
	err := s.db.WithContext(ctx).First(&img, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StoredImage{}, ErrNotFound
	}
	if err != nil {
		return models.StoredImage{}, err
	}
	return img, nil
}

// Open resolves the index entry and opens the backing blob for streaming.
// A missing blob behind a live index row reads as ErrNotFound: the caller
// only cares that the image is unavailable.
func (s *Store) Open(ctx context.Context, id string) (io.ReadCloser, int64, models.StoredImage, error) {
	img, err := s.Get(ctx, id)
	if err != nil {
		return nil, 0, models.StoredImage{}, err
	}
	rc, size, err := s.blob.Open(ctx, img.Filename)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, 0, models.StoredImage{}, ErrNotFound
	}
	if err != nil {
		return nil, 0, models.StoredImage{}, err
	}
	return rc, size, img, nil
}

// OpenThumb opens the downscaled JPEG generated at upload time, if any.
func (s *Store) OpenThumb(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, 0, err
	}
	rc, size, err := s.blob.Open(ctx, thumbName(id))
	if errors.Is(err, ErrBlobNotFound) {
		return nil, 0, ErrNotFound
	}
	return rc, size, err
}

// Delete removes the index row and then the blobs. The blob removals are
// best-effort: once the row is gone the image is unreachable either way.
func (s *Store) Delete(ctx context.Context, id string) error {
	img, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.StoredImage{}, "id = ?", id).Error; err != nil {
		return err
	}
	if err := s.blob.Remove(ctx, img.Filename); err != nil {
		log.Printf("store: removing blob %s: %v", img.Filename, err)
	}
	if err := s.blob.Remove(ctx, thumbName(id)); err != nil {
		log.Printf("store: removing thumbnail for %s: %v", id, err)
	}
	return nil
}

// putThumbnail decodes known raster formats and stores a downscaled JPEG
// next to the original. Failures never fail the upload.
func (s *Store) putThumbnail(ctx context.Context, id string, data []byte) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}
	thumb := resize.Thumbnail(thumbMaxPx, thumbMaxPx, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		log.Printf("store: encoding thumbnail for %s: %v", id, err)
		return
	}
	if err := s.blob.Put(ctx, thumbName(id), buf.Bytes(), "image/jpeg"); err != nil {
		log.Printf("store: writing thumbnail for %s: %v", id, err)
	}
}

func thumbName(id string) string {
	return id + "_thumb.jpg"
}

// extensionFor prefers the extension of the uploaded filename, then falls
// back to the declared MIME type, then to no extension at all.
func extensionFor(declaredFilename, declaredMime string) string {
	if ext := filepath.Ext(declaredFilename); ext != "" {
		return ext
	}
	return mimeExtensions[declaredMime]
}
