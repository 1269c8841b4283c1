package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/model"
)

// S3 is a registry backed by an S3 bucket.
type S3 struct {
	client s3iface.S3API
	bucket string
	key    string
	logger *slog.Logger
}

// NewS3Client creates an S3 client from cfg. Credentials come from the
// default AWS provider chain.
func NewS3Client(cfg *Config) (s3iface.S3API, error) {
	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return s3.New(sess), nil
}

// NewS3 binds an S3 registry to bucket and key.
func NewS3(client s3iface.S3API, bucket, key string, logger *slog.Logger) *S3 {
	return &S3{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger.With("system", "registry", "kind", KindS3),
	}
}

func (r *S3) Location() string {
	return fmt.Sprintf("s3://%s/%s", r.bucket, r.key)
}

func (r *S3) Exists(ctx context.Context) (bool, error) {
	_, err := r.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, faults.Wrap(faults.KindRegistry, err)
	}
	return true, nil
}

func (r *S3) Load(ctx context.Context) (*model.Bundle, error) {
	out, err := r.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		if isNotFound(err) {
			r.logger.Info("no model in registry", "location", r.Location())
			return nil, nil
		}
		return nil, faults.Wrap(faults.KindRegistry, err)
	}
	defer out.Body.Close()

	b, err := model.Decode(out.Body)
	if err != nil {
		return nil, faults.Wrap(faults.KindRegistry, err)
	}
	return b, nil
}

func (r *S3) Save(ctx context.Context, b *model.Bundle) error {
	data, err := encode(b)
	if err != nil {
		return err
	}

	_, err = r.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return faults.Wrap(faults.KindRegistry, err)
	}

	r.logger.Info("model saved", "location", r.Location(), "bytes", len(data))
	return nil
}

// isNotFound reports whether err means the object key is absent. A missing
// bucket is a misconfiguration, not an empty registry.
func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		case s3.ErrCodeNoSuchBucket:
			return false
		}
	}
	var reqErr awserr.RequestFailure
	return errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound && reqErr.Code() == ""
}
