package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/middleware"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/store"
)

// MaxUploadBytes is the largest accepted image payload.
const MaxUploadBytes = 20 << 20 // 20 MiB

// UploadImage accepts one multipart file under the "image" field, stores
// it content-addressed, and returns the id. Re-uploading identical bytes
// returns the same id without storing a second copy, which also makes
// client retries of failed uploads safe.
func UploadImage(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Cap the body before parsing; the margin covers multipart framing.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+64<<10)

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > MaxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the 20 MiB limit"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
			return
		}

		id, err := s.Put(c.Request.Context(), data, file.Filename, file.Header.Get("Content-Type"))
		if err != nil {
			log.Printf("images: storing upload from user %s: %v", c.GetString(middleware.UserIDKey), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

// GetImage streams the stored bytes with the stored MIME type. An index
// entry whose backing file has gone missing reads as 404: the caller only
// cares whether the image is retrievable.
func GetImage(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		rc, size, img, err := s.Open(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		if err != nil {
			log.Printf("images: opening %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}
		defer rc.Close()

		mime := img.Mime
		if mime == "" {
			mime = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, size, mime, rc, nil)
	}
}

// GetImageThumb streams the downscaled JPEG generated at upload, when one
// exists for the format.
func GetImageThumb(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		rc, size, err := s.OpenThumb(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "thumbnail not found"})
			return
		}
		if err != nil {
			log.Printf("images: opening thumbnail %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read thumbnail"})
			return
		}
		defer rc.Close()

		c.DataFromReader(http.StatusOK, size, "image/jpeg", rc, nil)
	}
}

// DeleteImage removes the index row and, best-effort, the stored file.
func DeleteImage(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := s.Delete(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		if err != nil {
			log.Printf("images: deleting %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete image"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// Health is the unauthenticated liveness probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
