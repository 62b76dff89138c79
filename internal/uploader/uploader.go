// Package uploader ships rotated log artifacts to S3 and retires them.
//
// The uploader is stateless across runs: delivery-exactly-once comes from
// deterministic object keys plus S3's overwrite-on-same-key semantics,
// not from any local bookkeeping. An artifact that was uploaded but not
// deleted (say the process died in between) is simply re-uploaded to the
// identical key on the next run.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"pocketlog/internal/artifact"
	"pocketlog/internal/config"
	"pocketlog/internal/logging"
)

// Artifacts are gzip streams; tagging the object lets downstream readers
// decompress on the fly without renaming.
const (
	contentType     = "text/plain"
	contentEncoding = "gzip"
)

// ErrNoBucket is returned by New when no destination bucket is configured.
// This is the one fatal precondition: without a bucket there is nothing
// useful a run could do, so it aborts before touching disk or network.
var ErrNoBucket = errors.New("no destination bucket configured")

// ObjectPutter is the minimal S3 surface needed by the Uploader, allowing
// injection of a fake client in tests.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader performs one discover → upload → delete pass over artifacts.
type Uploader struct {
	client      ObjectPutter
	bucket      string
	prefix      string
	deleteLocal bool
	logger      *slog.Logger
}

// New creates an Uploader for the configured bucket. Returns ErrNoBucket
// if the bucket name is empty.
func New(client ObjectPutter, cfg config.Config, logger *slog.Logger) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	return &Uploader{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      cfg.Prefix,
		deleteLocal: cfg.DeleteAfterUpload,
		logger:      logging.Default(logger).With("component", "uploader"),
	}, nil
}

// Run uploads every artifact in the sequence and returns the number of
// confirmed uploads. Artifacts are independent: a failed upload is logged
// with enough context to retry (path, bucket, key) and the pass moves on
// to the next artifact. The external scheduler re-invoking the agent is
// the retry mechanism; there is no internal retry or backoff.
func (u *Uploader) Run(ctx context.Context, artifacts iter.Seq[artifact.Artifact]) int {
	// One ID per pass so the audit log groups actions by invocation.
	logger := u.logger.With("run", uuid.NewString())

	uploaded := 0
	for a := range artifacts {
		key := a.Key(u.prefix)
		if err := u.upload(ctx, a, key); err != nil {
			logger.Error("upload failed",
				"path", a.Path, "bucket", u.bucket, "key", key, "error", err)
			continue
		}
		uploaded++
		logger.Info("uploaded artifact",
			"path", a.Path, "bucket", u.bucket, "key", key, "bytes", a.Size)

		if !u.deleteLocal {
			continue
		}
		// The object is already durably stored, so a failed local delete
		// is logged and ignored; the next run will overwrite the same key.
		if err := os.Remove(a.Path); err != nil {
			logger.Warn("delete after upload failed", "path", a.Path, "error", err)
			continue
		}
		logger.Info("deleted local artifact", "path", a.Path)
	}
	return uploaded
}

// upload streams the artifact's bytes to the destination key.
func (u *Uploader) upload(ctx context.Context, a artifact.Artifact, key string) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(u.bucket),
		Key:             aws.String(key),
		Body:            f,
		ContentType:     aws.String(contentType),
		ContentEncoding: aws.String(contentEncoding),
		ContentLength:   aws.Int64(a.Size),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}
