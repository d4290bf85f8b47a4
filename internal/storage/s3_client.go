package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrUnsupportedContentType = errors.New("unsupported avatar content type")

// avatarExtensions lists the accepted avatar content types.
var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	PresignTTL time.Duration
}

type Client struct {
	cfg     S3Config
	presign *s3.PresignClient
}

// AvatarUpload is a presigned PUT for a new avatar plus the URL it will be
// served from once uploaded.
type AvatarUpload struct {
	UploadURL string
	Headers   map[string]string
	Key       string
	PublicURL string
	ExpiresAt time.Time
}

func NewClient(ctx context.Context, cfg S3Config) (*Client, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		cfg:     cfg,
		presign: s3.NewPresignClient(s3Client),
	}, nil
}

// PresignAvatarUpload signs a PUT for a fresh object key under the user's
// avatar prefix.
func (c *Client) PresignAvatarUpload(ctx context.Context, userID uuid.UUID, contentType string) (AvatarUpload, error) {
	if c == nil {
		return AvatarUpload{}, errors.New("s3 client not initialized")
	}
	ext, err := AvatarExtension(contentType)
	if err != nil {
		return AvatarUpload{}, err
	}
	key := AvatarKey(userID, uuid.New(), ext)

	presigned, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(po *s3.PresignOptions) {
		po.Expires = c.cfg.PresignTTL
	})
	if err != nil {
		return AvatarUpload{}, fmt.Errorf("presign avatar upload: %w", err)
	}

	return AvatarUpload{
		UploadURL: presigned.URL,
		Headers:   map[string]string{"Content-Type": contentType},
		Key:       key,
		PublicURL: c.FileURL(key),
		ExpiresAt: time.Now().Add(c.cfg.PresignTTL),
	}, nil
}

func (c *Client) FileURL(key string) string {
	if c == nil || key == "" {
		return ""
	}
	if c.cfg.PublicBase != "" {
		return strings.TrimRight(c.cfg.PublicBase, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.cfg.Bucket, c.cfg.Region, key)
}

func AvatarExtension(contentType string) (string, error) {
	ext, ok := avatarExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return ext, nil
}

func AvatarKey(userID, objectID uuid.UUID, ext string) string {
	return fmt.Sprintf("avatars/%s/%s.%s", userID, objectID, ext)
}
