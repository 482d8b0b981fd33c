package report

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	objects    map[string][]byte
	opts       minio.PutObjectOptions
	params     url.Values
	presignErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) PutObject(_ context.Context, bucket, name string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	s.objects[name] = b
	s.opts = opts
	return minio.UploadInfo{Bucket: bucket, Key: name, Size: int64(len(b))}, nil
}

func (s *fakeStore) PresignedGetObject(_ context.Context, bucket, name string, _ time.Duration, params url.Values) (*url.URL, error) {
	if s.presignErr != nil {
		return nil, s.presignErr
	}
	s.params = params
	return url.Parse("https://files.example.test/" + bucket + "/" + name + "?X-Amz-Signature=abc")
}

func (s *fakeStore) RemoveObject(_ context.Context, _, name string, _ minio.RemoveObjectOptions) error {
	delete(s.objects, name)
	return nil
}

func TestObjectSinkDeliver(t *testing.T) {
	store := newFakeStore()
	sink := NewObjectSink(store, "exports", 5*time.Minute, 2*time.Minute, nil)
	sink.now = func() time.Time { return testNow }

	var scheduled []func()
	var delays []time.Duration
	sink.schedule = func(d time.Duration, fn func()) {
		delays = append(delays, d)
		scheduled = append(scheduled, fn)
	}

	a := &Artifact{Filename: "OrderReport_20260520_143000.pdf", ContentType: contentTypePDF, Inline: true, Body: []byte("%PDF-1.3")}
	d, err := sink.Deliver(context.Background(), a)
	require.NoError(t, err)

	key := "exports/20260520/OrderReport_20260520_143000.pdf"
	assert.Equal(t, key, d.ObjectKey)
	assert.Contains(t, d.URL, key)
	assert.Equal(t, testNow.Add(5*time.Minute), d.ExpiresAt)
	assert.Equal(t, contentTypePDF, store.opts.ContentType)
	assert.Equal(t, a.Disposition(), store.params.Get("response-content-disposition"))
	assert.Contains(t, store.objects, key)

	require.Len(t, scheduled, 1)
	assert.Equal(t, 2*time.Minute, delays[0])
	scheduled[0]()
	assert.NotContains(t, store.objects, key)
}

func TestObjectSinkPresignFailureRemovesObject(t *testing.T) {
	store := newFakeStore()
	store.presignErr = errors.New("no credentials")
	sink := NewObjectSink(store, "exports", time.Minute, time.Minute, nil)
	sink.schedule = func(time.Duration, func()) { t.Fatal("revoke must not be scheduled") }

	_, err := sink.Deliver(context.Background(), &Artifact{Filename: "a.xlsx", Body: []byte("x")})
	require.Error(t, err)
	assert.Empty(t, store.objects)
}

func TestStreamSink(t *testing.T) {
	a := &Artifact{Filename: "a.pdf"}
	d, err := StreamSink{}.Deliver(context.Background(), a)
	require.NoError(t, err)
	assert.Same(t, a, d.Artifact)
	assert.Empty(t, d.URL)
}
