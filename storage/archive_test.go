package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"clipbot/logger"
	"clipbot/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeObjects) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestArchiveUploadsFilesAndRecord(t *testing.T) {
	objects := newFakeObjects()
	a := newArchiverWithStore(newS3WithClient(objects, "bucket"), "/clipbot/", logger.Nop())

	dir := t.TempDir()
	video := filepath.Join(dir, "video.mp4")
	require.NoError(t, os.WriteFile(video, []byte("mp4"), 0644))

	keys, err := a.Archive(context.Background(), types.RunRecord{RunID: "r1", Title: "Oceanos"}, video, "", filepath.Join(dir, "missing.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []string{"clipbot/runs/r1/video.mp4", "clipbot/runs/r1/record.json"}, keys)
	assert.Equal(t, "application/json", objects.types["clipbot/runs/r1/record.json"])
	assert.Contains(t, string(objects.objects["clipbot/runs/r1/record.json"]), `"titulo": "Oceanos"`)

	ok, err := a.Archived(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Archived(context.Background(), "r2")
	require.NoError(t, err)
	assert.False(t, ok)

	listed, err := a.Runs(context.Background(), "r1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestNilArchiverIsNoop(t *testing.T) {
	var a *Archiver
	keys, err := a.Archive(context.Background(), types.RunRecord{RunID: "x"})
	assert.NoError(t, err)
	assert.Nil(t, keys)

	a, err = NewArchiver(context.Background(), S3Config{}, logger.Nop())
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestS3GetDeleteAndNotFound(t *testing.T) {
	objects := newFakeObjects()
	s := newS3WithClient(objects, "bucket")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", strings.NewReader("v"), ""))
	body, err := s.Get(ctx, "k")
	require.NoError(t, err)
	data, _ := io.ReadAll(body)
	body.Close()
	assert.Equal(t, "v", string(data))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.True(t, isNotFound(err))
	assert.False(t, isNotFound(errors.New("boom")))
}
