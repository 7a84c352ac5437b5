package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Fake is an in-memory BlobStore used by tests.
type Fake struct {
	mu      sync.Mutex
	objects map[string]Object
	bytesOf map[string][]byte
}

// NewFake returns an empty in-memory BlobStore.
func NewFake() *Fake {
	return &Fake{objects: make(map[string]Object), bytesOf: make(map[string][]byte)}
}

func (f *Fake) Get(_ context.Context, key string) (Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.bytesOf[key]
	if !ok {
		return Object{}, NotFound.New("key %q", key)
	}
	meta := f.objects[key]
	return Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: meta.ContentType,
		Size:        int64(len(data)),
	}, nil
}

func (f *Fake) Put(_ context.Context, key, contentType string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), data...)
	f.bytesOf[key] = cp
	f.objects[key] = Object{ContentType: contentType, Size: int64(len(cp))}
	return nil
}

func (f *Fake) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bytesOf, key)
	delete(f.objects, key)
	return nil
}

func (f *Fake) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bytesOf[key]; !ok {
		return "", nil
	}
	return "https://fake-blobstore.local/" + key + "?ttl=" + ttl.String(), nil
}

func (f *Fake) InitiateMultipartUpload(_ context.Context, key, contentType string) (Upload, error) {
	return &fakeUpload{store: f, key: key, contentType: contentType}, nil
}

// Has reports whether key currently holds an object, for test assertions
// about compensating deletes.
func (f *Fake) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.bytesOf[key]
	return ok
}

type fakeUpload struct {
	store       *Fake
	key         string
	contentType string
	buf         bytes.Buffer
	aborted     bool
}

func (u *fakeUpload) UploadPart(_ context.Context, partNumber int32, data []byte) (string, error) {
	u.buf.Write(data)
	return "etag-fake", nil
}

func (u *fakeUpload) Complete(ctx context.Context) error {
	return u.store.Put(ctx, u.key, u.contentType, u.buf.Bytes())
}

func (u *fakeUpload) Abort(_ context.Context) error {
	u.aborted = true
	return nil
}

var (
	_ BlobStore = (*Fake)(nil)
	_ Upload    = (*fakeUpload)(nil)
)
