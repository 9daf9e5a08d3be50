package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/plateful/backend/config"
)

// PhotoService archives original-resolution meal photos to S3. The inline
// data URI stored on the entry stays canonical; S3 only holds originals for
// clients that want them back at full quality.
type PhotoService struct {
	s3Config *config.S3Config
}

func NewPhotoService(s3Config *config.S3Config) *PhotoService {
	return &PhotoService{s3Config: s3Config}
}

// Enabled reports whether S3 archival is configured.
func (s *PhotoService) Enabled() bool {
	return s != nil && s.s3Config != nil && s.s3Config.Client != nil
}

// ArchivePhoto decodes a meal photo data URI and stores it under a key
// derived from the entry id. Returns the object key.
func (s *PhotoService) ArchivePhoto(ctx context.Context, entryID uuid.UUID, dataURI string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("photo archival is not configured")
	}

	mime, payload, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode photo payload: %w", err)
	}

	key, err := ArchiveKey(entryID, dataURI)
	if err != nil {
		return "", err
	}
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mime),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Printf("[PhotoService] archived photo for entry %s as %s", entryID, key)
	return key, nil
}

// PhotoURL generates a presigned URL for an archived photo.
func (s *PhotoService) PhotoURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("photo archival is not configured")
	}
	return s.s3Config.GeneratePresignedURL(ctx, key, expiration)
}

// ArchiveKey derives the S3 object key for an entry's photo from its id and
// the data URI's mime type. Deterministic, so the key can be recomputed for
// reads without storing it.
func ArchiveKey(entryID uuid.UUID, dataURI string) (string, error) {
	mime, _, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("meal-photos/%s%s", entryID, extensionFor(mime)), nil
}

func splitDataURI(dataURI string) (mime, payload string, err error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", "", fmt.Errorf("not a data URI")
	}
	mime, payload, ok = strings.Cut(rest, ";base64,")
	if !ok {
		return "", "", fmt.Errorf("data URI is not base64 encoded")
	}
	return mime, payload, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
