// Package uploads stores listing images in an S3-compatible bucket and
// returns the public URL the listing should reference.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ewaste/internal/client/config"
	"github.com/dmitrijs2005/ewaste/internal/logging"
	"github.com/google/uuid"
)

var ErrUploadsDisabled = errors.New("image uploads are not configured")

// Test seams for the AWS constructors.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader puts objects under listings/YYYY/M/D/<uuid><ext>.
type S3Uploader struct {
	cfg    config.S3Config
	client objectPutter
	now    func() time.Time
	newID  func() string
	log    logging.Logger
}

// NewS3Uploader builds an uploader from cfg. With no bucket configured the
// uploader is returned disabled and every upload fails with
// ErrUploadsDisabled.
func NewS3Uploader(ctx context.Context, cfg config.S3Config, log logging.Logger) (*S3Uploader, error) {
	u := &S3Uploader{cfg: cfg, now: time.Now, newID: uuid.NewString, log: log}
	if cfg.Bucket == "" {
		return u, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	u.client = newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return u, nil
}

// Enabled reports whether a bucket is configured.
func (u *S3Uploader) Enabled() bool {
	return u.client != nil
}

func (u *S3Uploader) objectKey(filename string) string {
	d := u.now()
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("listings/%d/%d/%d/%s%s", d.Year(), d.Month(), d.Day(), u.newID(), ext)
}

func (u *S3Uploader) objectURL(key string) string {
	switch {
	case u.cfg.PublicBaseURL != "":
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
	case u.cfg.Endpoint != "":
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
	}
}

// Upload stores body and returns its URL.
func (u *S3Uploader) Upload(ctx context.Context, filename string, body io.Reader, contentType string) (string, error) {
	if !u.Enabled() {
		return "", ErrUploadsDisabled
	}

	key := u.objectKey(filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	u.log.Debug(ctx, "image uploaded", "key", key)
	return u.objectURL(key), nil
}

// UploadFile uploads the file at path, guessing its content type from the
// extension or, failing that, the first bytes.
func (u *S3Uploader) UploadFile(ctx context.Context, path string) (string, error) {
	if !u.Enabled() {
		return "", ErrUploadsDisabled
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	contentType, err := detectContentType(f, path)
	if err != nil {
		return "", err
	}
	return u.Upload(ctx, filepath.Base(path), f, contentType)
}

func detectContentType(f io.ReadSeeker, path string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read image: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind image: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}
