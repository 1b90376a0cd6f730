package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	prefix          string
	useSSL          bool
}

func newConfig(opts ...MinioOpts) *minioConfig {
	cfg := &minioConfig{
		useSSL: false,
		prefix: "uploads",
	}

	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// MinioArchive stores uploaded documents in an S3 compatible bucket.
type MinioArchive struct {
	cfg    *minioConfig
	client *minio.Client
}

func NewMinioArchive(opts ...MinioOpts) (*MinioArchive, error) {
	cfg := newConfig(opts...)

	if cfg.endpoint == "" || cfg.bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}

	minioClient, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioArchive{cfg: cfg, client: minioClient}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (m *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.cfg.bucket, minio.MakeBucketOptions{})
}

// Put stores data under the archive prefix and returns the object key.
func (m *MinioArchive) Put(ctx context.Context, id, fileName string, data []byte) (string, error) {
	key := ObjectKey(m.cfg.prefix, id, fileName)
	_, err := m.client.PutObject(ctx, m.cfg.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *MinioArchive) Type() string {
	return "minio"
}

// ObjectKey returns prefix/id/base(fileName).
func ObjectKey(prefix, id, fileName string) string {
	name := path.Base(path.Clean("/" + fileName))
	if name == "/" || name == "." {
		name = "document.pdf"
	}
	return path.Join(prefix, id, name)
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithPrefix(prefix string) MinioOpts {
	return func(c *minioConfig) {
		c.prefix = prefix
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = secretKey
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}
