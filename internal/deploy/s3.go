// Package deploy publishes built wayfind assets (route chunks and the
// route manifest) to S3-compatible storage.
package deploy

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// manifestName is the manifest file served with no-cache so clients always
// see the latest chunk mapping. Everything else is content-hashed and
// immutable.
const manifestName = "manifest.json"

// S3API is the subset of the S3 client the publisher uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Publisher uploads a built asset directory to a bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	pub := deploy.NewPublisher(s3.NewFromConfig(cfg), "my-bucket", "app/")
//	result, err := pub.Publish(ctx, "dist")
type Publisher struct {
	client S3API
	bucket string
	prefix string
	log    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.log = log
	}
}

// NewPublisher creates a publisher for bucket. The prefix, if non-empty,
// is prepended to every object key.
func NewPublisher(client S3API, bucket, prefix string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.prefix != "" && !strings.HasSuffix(p.prefix, "/") {
		p.prefix += "/"
	}
	return p
}

// Result summarizes a publish run.
type Result struct {
	// Keys are the object keys uploaded, in walk order.
	Keys []string

	// Bytes is the total payload size uploaded.
	Bytes int64
}

// Publish uploads every regular file under dir. The manifest is uploaded
// last so a concurrent reader never sees a manifest referencing chunks that
// are not in the bucket yet.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Result, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deploy: walk %s: %w", dir, err)
	}

	// Chunks first, manifest last.
	var manifestPath string
	result := &Result{}
	for _, path := range files {
		if filepath.Base(path) == manifestName {
			manifestPath = path
			continue
		}
		if err := p.upload(ctx, dir, path, result); err != nil {
			return nil, err
		}
	}
	if manifestPath != "" {
		if err := p.upload(ctx, dir, manifestPath, result); err != nil {
			return nil, err
		}
	}

	p.log.Info("published assets", "bucket", p.bucket, "objects", len(result.Keys), "bytes", result.Bytes)
	return result, nil
}

// upload puts a single file, deriving the key from its path relative to dir.
func (p *Publisher) upload(ctx context.Context, dir, path string, result *Result) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return fmt.Errorf("deploy: relativize %s: %w", path, err)
	}
	key := p.prefix + filepath.ToSlash(rel)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("deploy: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("deploy: stat %s: %w", path, err)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(contentTypeFor(path)),
		CacheControl: aws.String(cacheControlFor(path)),
		Metadata: map[string]string{
			"deploy-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("deploy: put %s: %w", key, err)
	}

	p.log.Debug("uploaded", "key", key, "bytes", info.Size())
	result.Keys = append(result.Keys, key)
	result.Bytes += info.Size()
	return nil
}

// Prune deletes objects under the prefix that a publish run did not upload.
// Call it after Publish with the returned keys to drop orphaned chunks from
// earlier deploys.
func (p *Publisher) Prune(ctx context.Context, keep []string) (int, error) {
	kept := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		kept[k] = struct{}{}
	}

	var stale []string
	var token *string
	for {
		page, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(p.bucket),
			Prefix:            aws.String(p.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return 0, fmt.Errorf("deploy: list %s: %w", p.prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if _, ok := kept[*obj.Key]; !ok {
				stale = append(stale, *obj.Key)
			}
		}
		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		token = page.NextContinuationToken
	}

	for _, key := range stale {
		_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return 0, fmt.Errorf("deploy: delete %s: %w", key, err)
		}
		p.log.Debug("pruned", "key", key)
	}
	return len(stale), nil
}

// contentTypeFor maps a file to its MIME type, defaulting to octet-stream.
func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// cacheControlFor picks caching headers: the manifest must revalidate,
// hashed chunks never change.
func cacheControlFor(path string) string {
	if filepath.Base(path) == manifestName {
		return "no-cache"
	}
	return "public, max-age=31536000, immutable"
}
