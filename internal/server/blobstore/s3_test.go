package blobstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory bucket supporting single-part uploads only.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	panic("multipart not supported by fake")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	panic("multipart not supported by fake")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	panic("multipart not supported by fake")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	now := time.Now()
	for k, v := range f.objects {
		if !strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			continue
		}
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(v))),
			LastModified: aws.Time(now),
		})
	}
	return out, nil
}

func newFakeStore(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	f := newFakeS3()
	s, err := NewS3Store(f, "bucket", "blobs/", 1024)
	require.NoError(t, err)
	return s, f
}

func TestS3Store_PutOpen(t *testing.T) {
	ctx := context.Background()
	s, f := newFakeStore(t)

	require.NoError(t, s.Put(ctx, "abc", strings.NewReader("payload"), 7))
	assert.Contains(t, f.objects, "blobs/abc")

	rc, err := s.Open(ctx, "abc")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestS3Store_SizeMismatch(t *testing.T) {
	ctx := context.Background()
	s, f := newFakeStore(t)

	err := s.Put(ctx, "abc", strings.NewReader("short"), 100)
	require.ErrorIs(t, err, common.ErrSizeMismatch)
	assert.Zero(t, f.puts)
	assert.Empty(t, f.objects)
}

func TestS3Store_MissingKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newFakeStore(t)

	_, err := s.Open(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "nope"), common.ErrNotFound)
	assert.ErrorIs(t, s.Put(ctx, "a/b", strings.NewReader("x"), 1), ErrInvalidKey)
}

func TestS3Store_ListStripsPrefix(t *testing.T) {
	ctx := context.Background()
	s, f := newFakeStore(t)

	require.NoError(t, s.Put(ctx, "one", strings.NewReader("1"), 1))
	require.NoError(t, s.Put(ctx, "two", strings.NewReader("22"), 2))
	f.objects["other/three"] = []byte("333")
	f.objects["blobs/nested/four"] = []byte("4444")

	list, err := s.List(ctx)
	require.NoError(t, err)

	sizes := map[string]int64{}
	for _, i := range list {
		sizes[i.Key] = i.Size
	}
	assert.Equal(t, map[string]int64{"one": 1, "two": 2}, sizes)

	require.NoError(t, s.Delete(ctx, "one"))
	assert.NotContains(t, f.objects, "blobs/one")
}

func TestNewS3Store_Validation(t *testing.T) {
	_, err := NewS3Store(newFakeS3(), "", "p/", 1024)
	assert.Error(t, err)
	_, err = NewS3Store(newFakeS3(), "b", "p/", 0)
	assert.Error(t, err)
}
