package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"git-sync-operator/internal/api"
)

// PutObjectAPI is the subset of the S3 client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// S3Sink records each completed deployment as an object keyed by
// cluster/namespace/deployment/revision whose body is the completion time.
type S3Sink struct {
	client PutObjectAPI
	bucket string
}

func NewS3Sink(client PutObjectAPI, bucket string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket}
}

func (s *S3Sink) Name() string { return "s3" }

func (s *S3Sink) Send(ctx context.Context, event api.DeploymentEvent) error {
	completed := event.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}
	key := AuditKey(event)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(completed.UTC().Format(time.RFC3339)),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return api.NewTransientError(fmt.Sprintf("put s3://%s/%s", s.bucket, key), err)
	}
	return nil
}

// AuditKey returns the object key for event.
func AuditKey(event api.DeploymentEvent) string {
	return strings.Join([]string{event.Cluster, event.Namespace, event.Deployment, string(event.Revision)}, "/")
}
