package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hirely/internal/config"
)

// Client 封装 MinIO 客户端，提供 Logo 上传与删除接口。
// 对外可见的对象地址由 PublicURL 按固定规则拼接，不依赖预签名。
type Client struct {
	minioClient   *minio.Client
	bucketName    string
	publicBaseURL string
}

// NewClient 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := minioClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreate {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := minioClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{
		minioClient:   minioClient,
		bucketName:    cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// UploadLogo 将对象上传到 Bucket，并返回其公开访问地址。
func (c *Client) UploadLogo(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.minioClient.PutObject(ctx, c.bucketName, objectKey, reader, size, opts); err != nil {
		return "", fmt.Errorf("put object %q: %w", objectKey, err)
	}
	return c.PublicURL(objectKey), nil
}

// PublicURL 按固定规则拼接对象的公开访问地址：
// {base}/storage/v1/object/public/{bucket}/{key}。
func (c *Client) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.publicBaseURL, c.bucketName, objectKey)
}

// GetObject 直接读取 Bucket 中的对象。
func (c *Client) GetObject(ctx context.Context, objectKey string) (*minio.Object, error) {
	obj, err := c.minioClient.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", objectKey, err)
	}
	return obj, nil
}

// DeleteLogo 删除指定对象。
// 若对象不存在会被视为成功（幂等）。
func (c *Client) DeleteLogo(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.minioClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}
