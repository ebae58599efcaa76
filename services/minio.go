package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/config"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/store"
)

var MinioClient *minio.Client

func InitMinio(cfg *config.Config) {
	var err error

	// Initialize minio client object.
	MinioClient, err = minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalln(err)
	}

	log.Printf("MinIO Client initialized successfully to %s\n", cfg.MinioEndpoint)

	// Create bucket if it doesn't exist
	ctx := context.Background()
	exists, err := MinioClient.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		log.Fatalln(err)
	}
	if !exists {
		err = MinioClient.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("Successfully created bucket %s\n", cfg.MinioBucket)
	}
}

// MinioBlob adapts the MinIO client to the content store's Blob interface.
type MinioBlob struct {
	bucket string
}

func NewMinioBlob(bucket string) *MinioBlob {
	return &MinioBlob{bucket: bucket}
}

func (m *MinioBlob) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := MinioClient.PutObject(ctx, m.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *MinioBlob) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	obj, err := MinioClient.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, err
	}
	// GetObject is lazy; Stat is the first round trip and the point where
	// a missing key surfaces.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, 0, store.ErrBlobNotFound
		}
		return nil, 0, err
	}
	return obj, info.Size, nil
}

func (m *MinioBlob) Remove(ctx context.Context, name string) error {
	return MinioClient.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
}
