package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/tastebox/backend/internal/extraction"
)

const (
	maxImageBytes       = 10 << 20
	imageFetchAttempts  = 3
	imageRequestTimeout = 20 * time.Second
	imageKeyPrefix      = "recipe-images/"
)

var (
	ErrInvalidImageURL   = errors.New("invalid image url")
	ErrNotAnImage        = errors.New("remote resource is not an image")
	ErrImageTooLarge     = errors.New("image exceeds size limit")
	ErrStorageDisabled   = errors.New("object storage is not configured")
	errRetryableResponse = errors.New("retryable upstream status")
)

// ObjectUploader is the subset of the S3 client used to mirror images
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// RemoteImage is an image downloaded from its origin
type RemoteImage struct {
	Data        []byte
	ContentType string
}

// ImageService proxies recipe images past hotlink protection and mirrors them to S3
type ImageService struct {
	// AllowPrivateHosts disables the private address guard. Tests use it to reach httptest servers.
	AllowPrivateHosts bool

	client   *http.Client
	uploader ObjectUploader
	bucket   string
	maxBytes int64
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewImageService creates a new ImageService instance. A nil uploader disables Mirror.
func NewImageService(uploader ObjectUploader, bucket string) *ImageService {
	s := &ImageService{
		uploader: uploader,
		bucket:   bucket,
		maxBytes: maxImageBytes,
		sleep:    sleepWithContext,
	}
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(network, address string, c syscall.RawConn) error {
			if s.AllowPrivateHosts {
				return nil
			}
			return extraction.DenyPrivateAddress(network, address, c)
		},
	}
	s.client = &http.Client{
		Timeout:   imageRequestTimeout,
		Transport: &http.Transport{DialContext: dialer.DialContext, Proxy: http.ProxyFromEnvironment},
	}
	return s
}

// Fetch downloads an image, retrying transport failures and 5xx responses with a growing delay
func (s *ImageService) Fetch(ctx context.Context, rawURL string) (*RemoteImage, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidImageURL
	}

	var lastErr error
	for attempt := 1; attempt <= imageFetchAttempts; attempt++ {
		img, err := s.fetchOnce(ctx, u)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !isRetryableImageError(err) || attempt == imageFetchAttempts {
			break
		}
		log.Printf("[ImageService] Attempt %d for %s failed: %v", attempt, u.Host, err)
		if err := s.sleep(ctx, time.Duration(attempt)*time.Second); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to fetch image: %w", lastErr)
}

func isRetryableImageError(err error) bool {
	if errors.Is(err, ErrNotAnImage) || errors.Is(err, ErrImageTooLarge) || errors.Is(err, extraction.ErrPrivateHost) {
		return false
	}
	var status *extraction.StatusError
	if errors.As(err, &status) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func (s *ImageService) fetchOnce(ctx context.Context, u *url.URL) (*RemoteImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", extraction.BrowserUserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Referer", u.Scheme+"://"+u.Host+"/")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: %d", errRetryableResponse, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &extraction.StatusError{StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: %q", ErrNotAnImage, contentType)
	}
	if resp.ContentLength > s.maxBytes {
		return nil, ErrImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	return &RemoteImage{Data: data, ContentType: mediaType}, nil
}

// Mirror copies a remote image into the bucket and returns its public URL
func (s *ImageService) Mirror(ctx context.Context, rawURL string) (string, error) {
	if s.uploader == nil {
		return "", ErrStorageDisabled
	}
	img, err := s.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	key := imageKeyPrefix + uuid.New().String() + imageExtension(img.ContentType)
	_, err = s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	// Return public URL
	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	log.Printf("[ImageService] Successfully uploaded image to S3: %s", publicURL)
	return publicURL, nil
}

func imageExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
