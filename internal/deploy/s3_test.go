package deploy

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 records uploads and serves a fixed listing.
type fakeS3 struct {
	mu      sync.Mutex
	puts    []*s3.PutObjectInput
	bodies  map[string]string
	listing []string
	deleted []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{bodies: make(map[string]string)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	f.bodies[*in.Key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, key := range f.listing {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishUploadsManifestLast(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "manifest.json", `{"routes":[]}`)
	writeFile(t, dir, "chunks/users.js", "console.log('users')")
	writeFile(t, dir, "chunks/admin.js", "console.log('admin')")

	fake := newFakeS3()
	pub := NewPublisher(fake, "assets", "app", WithLogger(discardLogger()))

	result, err := pub.Publish(context.Background(), dir)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(result.Keys) != 3 {
		t.Fatalf("uploaded keys = %v, want 3", result.Keys)
	}
	if last := result.Keys[len(result.Keys)-1]; last != "app/manifest.json" {
		t.Errorf("last key = %q, want the manifest", last)
	}
	if fake.bodies["app/chunks/users.js"] != "console.log('users')" {
		t.Errorf("chunk body = %q", fake.bodies["app/chunks/users.js"])
	}
	if result.Bytes == 0 {
		t.Error("total bytes not accumulated")
	}
}

func TestPublishHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "manifest.json", "{}")
	writeFile(t, dir, "main.js", "x")

	fake := newFakeS3()
	pub := NewPublisher(fake, "assets", "", WithLogger(discardLogger()))

	if _, err := pub.Publish(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	byKey := make(map[string]*s3.PutObjectInput)
	for _, put := range fake.puts {
		byKey[*put.Key] = put
	}

	manifest := byKey["manifest.json"]
	if manifest == nil {
		t.Fatal("manifest not uploaded")
	}
	if got := aws.ToString(manifest.CacheControl); got != "no-cache" {
		t.Errorf("manifest cache-control = %q", got)
	}
	if got := aws.ToString(manifest.ContentType); !strings.Contains(got, "application/json") {
		t.Errorf("manifest content-type = %q", got)
	}

	chunk := byKey["main.js"]
	if chunk == nil {
		t.Fatal("chunk not uploaded")
	}
	if got := aws.ToString(chunk.CacheControl); !strings.Contains(got, "immutable") {
		t.Errorf("chunk cache-control = %q", got)
	}
}

func TestPruneDeletesOrphans(t *testing.T) {
	fake := newFakeS3()
	fake.listing = []string{
		"app/manifest.json",
		"app/chunks/users.js",
		"app/chunks/old-users.js",
		"other/untouched.js",
	}

	pub := NewPublisher(fake, "assets", "app/", WithLogger(discardLogger()))
	n, err := pub.Prune(context.Background(), []string{
		"app/manifest.json",
		"app/chunks/users.js",
	})
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned = %d, want 1", n)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "app/chunks/old-users.js" {
		t.Errorf("deleted = %v", fake.deleted)
	}
}
