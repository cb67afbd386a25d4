package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "assignments")

	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ref, err := store.Save(ctx, "assignment-1-000000001.pdf", bytes.NewReader([]byte("data")), 4, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "assignment-1-000000001.pdf", ref)
	assert.Equal(t, "/uploads/assignments/assignment-1-000000001.pdf", store.URL(ref))

	content, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ref, files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)

	require.NoError(t, store.Delete(ctx, ref))
	require.NoError(t, store.Delete(ctx, ref), "deleting a missing file is not an error")

	files, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalStoreRejectsPathTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../escape.pdf", "a/b.pdf", "", ".hidden"} {
		_, err := store.Save(context.Background(), name, bytes.NewReader(nil), 0, "")
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestLocalStoreDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(ctx, "a.zip", bytes.NewReader([]byte("one")), 3, "application/zip")
	require.NoError(t, err)
	_, err = store.Save(ctx, "a.zip", bytes.NewReader([]byte("two")), 3, "application/zip")
	assert.Error(t, err)
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2PagesWithContext(_ aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	page := &s3.ListObjectsV2Output{}
	modified := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for key, data := range f.objects {
		page.Contents = append(page.Contents, &s3.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(data))),
			LastModified: aws.Time(modified),
		})
	}
	fn(page, true)
	return nil
}

func TestSpacesStore(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewSpacesStoreWithClient(fake, SpacesConfig{Bucket: "skills", Endpoint: "https://blr1.digitaloceanspaces.com"})

	ref, err := store.Save(ctx, "a.pdf", bytes.NewReader([]byte("pdf")), 3, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", ref)
	assert.Contains(t, fake.objects, "assignments/a.pdf")
	assert.Equal(t, "https://skills.blr1.digitaloceanspaces.com/assignments/a.pdf", store.URL(ref))

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.pdf", files[0].Name)

	require.NoError(t, store.Delete(ctx, ref))
	assert.Empty(t, fake.objects)

	cdn := NewSpacesStoreWithClient(fake, SpacesConfig{Bucket: "skills", CDNURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/assignments/a.pdf", cdn.URL("a.pdf"))
}
