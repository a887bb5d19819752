package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"artisan/internal/model"
)

// UploadFailedError is a failed origin fetch or storage write during
// re-hosting. Tools classify it under the storage bucket.
type UploadFailedError struct {
	Kind  model.MediaKind
	cause error
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("failed to upload %s to storage: %v", e.Kind, e.cause)
}

func (e *UploadFailedError) Unwrap() error { return e.cause }

// ObjectWriter is the slice of the minio client the uploader needs.
type ObjectWriter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader re-hosts generated files from their origin URLs into durable
// object storage under {kind}s/{userID}/{id}.{ext}.
type Uploader struct {
	objects       ObjectWriter
	bucket        string
	publicBaseURL string
	http          *http.Client
}

func NewUploader(objects ObjectWriter, bucket, publicBaseURL string) *Uploader {
	return &Uploader{
		objects:       objects,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		http:          &http.Client{Timeout: 2 * time.Minute},
	}
}

// Upload fetches every descriptor concurrently and writes it to storage.
// The batch is all-or-nothing: the first failure cancels the siblings and
// fails the whole call, so a tool result never reports half a batch.
func (u *Uploader) Upload(ctx context.Context, descriptors []FileDescriptor, userID string, kind model.MediaKind) ([]model.MediaFile, error) {
	if len(descriptors) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files := make([]model.MediaFile, len(descriptors))
	errs := make([]error, len(descriptors))

	var wg sync.WaitGroup
	for i, descriptor := range descriptors {
		wg.Add(1)
		go func(i int, descriptor FileDescriptor) {
			defer wg.Done()
			file, err := u.uploadOne(ctx, descriptor, userID, kind)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			files[i] = file
		}(i, descriptor)
	}
	wg.Wait()

	// Siblings cancelled by the failing upload record context.Canceled, so
	// prefer the error that actually caused the cancellation.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return files, nil
}

func (u *Uploader) uploadOne(ctx context.Context, descriptor FileDescriptor, userID string, kind model.MediaKind) (model.MediaFile, error) {
	contentType := descriptor.ContentType
	if contentType == "" {
		contentType = kind.DefaultContentType()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, descriptor.URL, nil)
	if err != nil {
		return model.MediaFile{}, &UploadFailedError{Kind: kind, cause: err}
	}
	res, err := u.http.Do(req)
	if err != nil {
		return model.MediaFile{}, &UploadFailedError{Kind: kind, cause: err}
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return model.MediaFile{}, &UploadFailedError{Kind: kind, cause: fmt.Errorf("fetch %s from origin: status %s", kind, res.Status)}
	}

	// Buffer fully so the storage write knows its size and a broken origin
	// stream cannot leave a truncated object behind.
	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return model.MediaFile{}, &UploadFailedError{Kind: kind, cause: err}
	}

	objectPath := fmt.Sprintf("%ss/%s/%s%s", kind, userID, uuid.NewString(), ExtensionForContentType(contentType, kind))
	_, err = u.objects.PutObject(ctx, u.bucket, objectPath, bytes.NewReader(buf), int64(len(buf)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return model.MediaFile{}, &UploadFailedError{Kind: kind, cause: err}
	}

	return model.MediaFile{
		Kind:        kind,
		ContentType: contentType,
		URL:         u.publicBaseURL + "/" + objectPath,
	}, nil
}

var extensionByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
	"video/mov":  ".mov",
	"audio/mp3":  ".mp3",
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
}

var defaultExtensionByKind = map[model.MediaKind]string{
	model.MediaKindImage: ".png",
	model.MediaKindVideo: ".mp4",
	model.MediaKindAudio: ".mp3",
}

// ExtensionForContentType derives the object extension from the content
// type, falling back to the kind default, then to a generic binary suffix.
func ExtensionForContentType(contentType string, kind model.MediaKind) string {
	if ext, ok := extensionByContentType[strings.ToLower(strings.TrimSpace(contentType))]; ok {
		return ext
	}
	if ext, ok := defaultExtensionByKind[kind]; ok {
		return ext
	}
	return ".bin"
}
