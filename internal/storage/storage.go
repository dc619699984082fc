package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mobility-ops/console/backend/internal/config"
)

// ObjectSink sube archivos generados (manifiestos de traslado) al almacenamiento de objetos.
type ObjectSink struct {
	client  *minio.Client
	bucket  string
	region  string
	timeout time.Duration
}

// NewObjectSink devuelve nil, sin error, cuando no hay endpoint configurado.
func NewObjectSink(cfg *config.Config) (*ObjectSink, error) {
	if cfg.Storage.Endpoint == "" {
		return nil, nil
	}

	endpoint := cfg.Storage.Endpoint
	useSSL := cfg.Storage.UseSSL
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKeyID, cfg.Storage.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Storage.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("no se pudo crear el cliente de almacenamiento: %w", err)
	}

	return &ObjectSink{
		client:  client,
		bucket:  cfg.Storage.Bucket,
		region:  cfg.Storage.Region,
		timeout: time.Duration(cfg.Storage.UploadTimeout) * time.Second,
	}, nil
}

func (s *ObjectSink) EnsureBucket() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
}

// Put sube data bajo key y devuelve la ruta bucket/key.
func (s *ObjectSink) Put(key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	return s.bucket + "/" + key, nil
}

// ManifestKey agrupa los manifiestos por mes.
func ManifestKey(day time.Time, fileName string) string {
	return fmt.Sprintf("traslados/%s/%s", day.Format("2006-01"), fileName)
}
