package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/artcatalog/internal/domain"
)

type fakeObject struct {
	body        []byte
	contentType string
}

// fakeClient is an in-memory single-bucket S3 with two-key pages.
type fakeClient struct {
	bucketExists bool
	created      int
	objects      map[string]fakeObject
	putErr       error
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: make(map[string]fakeObject)}
}

func (f *fakeClient) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if !f.bucketExists {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeClient) CreateBucket(_ context.Context, _ *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created++
	f.bucketExists = true
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeClient) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	if !f.bucketExists {
		return nil, &types.NoSuchBucket{}
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = fakeObject{body: body, contentType: aws.ToString(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeClient) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if !f.bucketExists {
		return nil, &types.NoSuchBucket{}
	}
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.body)),
		ContentType: aws.String(obj.contentType),
	}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if !f.bucketExists {
		return nil, &types.NoSuchBucket{}
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeClient) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if !f.bucketExists {
		return nil, &types.NoSuchBucket{}
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		_, err := fmt.Sscanf(*in.ContinuationToken, "%d", &start)
		if err != nil {
			return nil, err
		}
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(fmt.Sprintf("%d", end))
	}
	return out, nil
}

func TestStoreSaveProvisionsBucketOnce(t *testing.T) {
	fc := newFakeClient()
	store := newWithClient(fc, "photos", "us-east-1", "catalog")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Save(ctx, "image/png", bytes.NewReader([]byte("x")))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fc.created)
}

func TestStoreSaveAndLoad(t *testing.T) {
	fc := newFakeClient()
	store := newWithClient(fc, "photos", "us-east-1", "/catalog/")
	ctx := context.Background()
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF}

	id, err := store.Save(ctx, "image/png", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, ".png"))
	assert.Contains(t, fc.objects, "catalog/"+id)

	data, mimeType, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/png", mimeType)
}

func TestStoreLoadMissing(t *testing.T) {
	fc := newFakeClient()
	store := newWithClient(fc, "photos", "us-east-1", "")
	ctx := context.Background()

	_, _, err := store.Load(ctx, "nope.png")
	assert.ErrorIs(t, err, domain.ErrNotFound, "unprovisioned bucket")

	fc.bucketExists = true
	_, _, err = store.Load(ctx, "nope.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	fc := newFakeClient()
	store := newWithClient(fc, "photos", "us-east-1", "")
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "never-saved.png"))

	id, err := store.Save(ctx, "image/jpeg", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))
	assert.Empty(t, fc.objects)
}

func TestStoreListPaginatesAndStripsPrefix(t *testing.T) {
	fc := newFakeClient()
	store := newWithClient(fc, "photos", "us-east-1", "catalog")
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	var saved []string
	for i := 0; i < 5; i++ {
		id, err := store.Save(ctx, "image/png", bytes.NewReader([]byte{byte(i)}))
		require.NoError(t, err)
		saved = append(saved, id)
	}
	fc.objects["other/unrelated.png"] = fakeObject{}

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, saved, ids)
}

func TestStoreSaveFailureIsStorageWriteError(t *testing.T) {
	fc := newFakeClient()
	fc.putErr = errors.New("slow down")
	store := newWithClient(fc, "photos", "us-east-1", "")

	_, err := store.Save(context.Background(), "image/png", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, domain.ErrStorageWrite)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
