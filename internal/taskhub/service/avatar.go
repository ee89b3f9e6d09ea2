package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/pkg/slogx"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const DefaultAvatarUploadTTL = 15 * time.Minute

var avatarExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Presigner is the part of *s3.PresignClient the avatar upload needs.
type Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, set for MinIO and friends
	AccessKey string
	SecretKey string
}

// NewS3Presigner builds a presign client with static credentials. A custom
// endpoint switches to path-style addressing.
func NewS3Presigner(ctx context.Context, c S3Config) (*s3.PresignClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}

// AvatarService hands out presigned upload URLs for profile pictures.
type AvatarService struct {
	Store     store.Store
	Presigner Presigner // nil disables uploads
	Bucket    string
	TTL       time.Duration
}

type AvatarUpload struct {
	UploadURL string
	Key       string
	ExpiresAt time.Time
}

// Enabled reports whether object storage is configured.
func (s *AvatarService) Enabled() bool {
	return s != nil && s.Presigner != nil && s.Bucket != ""
}

// PresignUpload returns a PUT URL for a new avatar object and records its key
// as the user's profile picture.
func (s *AvatarService) PresignUpload(ctx context.Context, userID, contentType string) (AvatarUpload, error) {
	if !s.Enabled() {
		return AvatarUpload{}, ErrStorageDisabled
	}
	ext, ok := avatarExt[contentType]
	if !ok {
		return AvatarUpload{}, invalidInput("unsupported content type %q", contentType)
	}

	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AvatarUpload{}, ErrUserNotFound
		}
		return AvatarUpload{}, err
	}

	ttl := ttlOr(s.TTL, DefaultAvatarUploadTTL)
	expires := time.Now().UTC().Add(ttl)
	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)

	req, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return AvatarUpload{}, fmt.Errorf("presign avatar upload: %w", err)
	}

	if err := s.Store.Users().UpdateProfilePicture(ctx, userID, key); err != nil {
		return AvatarUpload{}, err
	}

	slogx.FromContext(ctx).Info("avatar upload presigned",
		slog.String("user_id", userID),
		slog.String("key", key),
	)
	return AvatarUpload{UploadURL: req.URL, Key: key, ExpiresAt: expires}, nil
}
