// Package coldstore periodically rotates aged historical CSV files out of
// local disk: gzip each file, optionally upload the gzipped copy to S3, and
// remove the local plaintext once the rotation succeeds.
//
// Grounded on _examples/ndrandal-feed-simulator/internal/archive/archiver.go
// (cycle/groupByDay/writeBatch/rotate shape), adapted from a Mongo-backed
// trade archiver to a filesystem-backed CSV rotator, and from the example
// pack's aws-sdk-go-v2 dependency (present but unused by the teacher) for
// the optional upload leg.
package coldstore

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is the subset of *s3.Client the rotator depends on.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Rotator gzips historical CSV files older than afterHours and, when bucket
// is non-empty, uploads the gzipped copy to S3 before deleting the local
// plaintext.
type Rotator struct {
	dir        string
	afterHours int
	bucket     string
	prefix     string
	uploader   Uploader
}

// New builds a Rotator over dir. uploader may be nil when bucket is empty:
// in that case gzipped files are kept locally and never uploaded.
func New(dir string, afterHours int, bucket, prefix string, uploader Uploader) *Rotator {
	return &Rotator{dir: dir, afterHours: afterHours, bucket: bucket, prefix: prefix, uploader: uploader}
}

// Run starts the periodic rotation loop, checking every interval. Blocks
// until ctx is cancelled.
func (r *Rotator) Run(ctx context.Context, interval time.Duration) {
	r.cycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func (r *Rotator) cycle(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(r.afterHours) * time.Hour)

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		log.Printf("coldstore: read dir: %v", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := r.rotateFile(ctx, filepath.Join(r.dir, entry.Name())); err != nil {
			log.Printf("coldstore: rotate %s: %v", entry.Name(), err)
		}
	}
}

// rotateFile gzips path, uploads the gzipped bytes to S3 when configured,
// and removes path only once the rotation above it has succeeded.
func (r *Rotator) rotateFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		gz.Close()
		return fmt.Errorf("gzip: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("gzip close: %w", err)
	}

	gzPath := path + ".gz"
	if err := os.WriteFile(gzPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write gz: %w", err)
	}

	if r.bucket != "" && r.uploader != nil {
		key := filepath.Join(r.prefix, filepath.Base(gzPath))
		if _, err := r.uploader.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &r.bucket,
			Key:    &key,
			Body:   io.NopCloser(bytes.NewReader(buf.Bytes())),
		}); err != nil {
			return fmt.Errorf("s3 upload: %w", err)
		}
		log.Printf("coldstore: uploaded %s to s3://%s/%s", gzPath, r.bucket, key)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove original: %w", err)
	}
	log.Printf("coldstore: rotated %s", path)
	return nil
}
