package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/models"
)

const keyPrefix = "transcripts"

// SpacesClient archives transcripts as JSON objects in an S3-compatible
// bucket (DigitalOcean Spaces, MinIO, S3).
type SpacesClient struct {
	client *s3.Client
	bucket string
}

type archivedTranscript struct {
	*models.TranscriptResult
	ArchivedAt time.Time `json:"archived_at"`
}

func NewSpacesClient(ctx context.Context, cfg config.SpacesConfig) (*SpacesClient, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               cfg.Endpoint,
			HostnameImmutable: cfg.PathStyle,
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load SDK config")
	}

	return &SpacesClient{
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.PathStyle
		}),
		bucket: cfg.Bucket,
	}, nil
}

// ObjectKey is transcripts/<video id>/<language code>.json.
func ObjectKey(videoID, languageCode string) string {
	return fmt.Sprintf("%s/%s/%s.json", keyPrefix, videoID, languageCode)
}

func (s *SpacesClient) Archive(ctx context.Context, result *models.TranscriptResult) error {
	data, err := json.Marshal(archivedTranscript{
		TranscriptResult: result,
		ArchivedAt:       time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal transcript")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ObjectKey(result.VideoID, result.LanguageCode)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to save to Spaces")
	}
	return nil
}

func (s *SpacesClient) Load(ctx context.Context, videoID, languageCode string) (*models.TranscriptResult, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ObjectKey(videoID, languageCode)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get from Spaces")
	}
	defer out.Body.Close()

	var archived archivedTranscript
	archived.TranscriptResult = new(models.TranscriptResult)
	if err := json.NewDecoder(out.Body).Decode(&archived); err != nil {
		return nil, errors.Wrap(err, "failed to decode transcript")
	}
	return archived.TranscriptResult, nil
}
