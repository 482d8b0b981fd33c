package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Format of an export.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Artifact is a rendered, serialized document.
type Artifact struct {
	Filename    string
	ContentType string
	// Inline documents open in the browser (print preview); others download.
	Inline bool
	Body   []byte
}

// Disposition returns the Content-Disposition header value.
func (a *Artifact) Disposition() string {
	kind := "attachment"
	if a.Inline {
		kind = "inline"
	}
	return fmt.Sprintf("%s; filename=%q", kind, a.Filename)
}

func render(doc *Document, format Format) (*Artifact, error) {
	switch format {
	case FormatPDF:
		body, err := RenderPDF(doc)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Filename:    Filename(doc.Name, "pdf", doc.GeneratedAt),
			ContentType: contentTypePDF,
			Inline:      true,
			Body:        body,
		}, nil
	case FormatXLSX:
		body, err := RenderXLSX(doc)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Filename:    Filename(doc.Name, "xlsx", doc.GeneratedAt),
			ContentType: contentTypeXLSX,
			Body:        body,
		}, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Delivery is what the caller hands back to the user: either the artifact itself
// or a short-lived link to it.
type Delivery struct {
	Artifact  *Artifact
	URL       string
	ObjectKey string
	ExpiresAt time.Time
}

type Sink interface {
	Deliver(ctx context.Context, a *Artifact) (*Delivery, error)
}

// StreamSink returns the artifact for the handler to write directly.
type StreamSink struct{}

func (StreamSink) Deliver(_ context.Context, a *Artifact) (*Delivery, error) {
	return &Delivery{Artifact: a}, nil
}

// ObjectStore is the subset of *minio.Client used by ObjectSink.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// ObjectSink uploads artifacts to object storage and hands out a presigned link.
// The object is removed RevokeDelay after upload, so the link stops working once
// the browser has had time to start the download.
type ObjectSink struct {
	store       ObjectStore
	bucket      string
	prefix      string
	linkTTL     time.Duration
	revokeDelay time.Duration
	logger      *zap.Logger
	now         func() time.Time
	// schedule runs fn after d; replaced in tests.
	schedule func(d time.Duration, fn func())
}

func NewObjectSink(store ObjectStore, bucket string, linkTTL, revokeDelay time.Duration, logger *zap.Logger) *ObjectSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectSink{
		store:       store,
		bucket:      bucket,
		prefix:      "exports",
		linkTTL:     linkTTL,
		revokeDelay: revokeDelay,
		logger:      logger,
		now:         time.Now,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

func (s *ObjectSink) Deliver(ctx context.Context, a *Artifact) (*Delivery, error) {
	key := path.Join(s.prefix, s.now().Format("20060102"), a.Filename)

	_, err := s.store.PutObject(ctx, s.bucket, key, bytes.NewReader(a.Body), int64(len(a.Body)), minio.PutObjectOptions{
		ContentType:        a.ContentType,
		ContentDisposition: a.Disposition(),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", a.Disposition())
	u, err := s.store.PresignedGetObject(ctx, s.bucket, key, s.linkTTL, params)
	if err != nil {
		s.revoke(key)
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	s.schedule(s.revokeDelay, func() { s.revoke(key) })

	return &Delivery{
		URL:       u.String(),
		ObjectKey: key,
		ExpiresAt: s.now().Add(s.linkTTL),
	}, nil
}

func (s *ObjectSink) revoke(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.store.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("revoke export object failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Debug("export object revoked", zap.String("key", key))
}
