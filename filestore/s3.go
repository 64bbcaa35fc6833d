package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Config describes any S3 compatible bucket. Endpoint is optional for AWS
// itself and required for R2, MinIO and friends.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyId     string
	SecretAccessKey string
}

type s3FileStore struct {
	client *s3.Client
	bucket string
}

// R2Endpoint is the S3 endpoint of a Cloudflare R2 account.
func R2Endpoint(accountId string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountId)
}

func NewS3FileStore(ctx context.Context, cfg S3Config) (FileStore, error) {
	if cfg.Bucket == "" {
		return nil, ErrInvalidConfig.Wrapf("bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	loadOptions := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKeyId != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyId, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, ErrInvalidConfig.Wrap(fmt.Errorf("fail to load s3 filestore config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &s3FileStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func (s *s3FileStore) UploadFileData(ctx context.Context, key string, data []byte, contentType string) error {
	obj := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		obj.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, obj); err != nil {
		return ErrUpload.Wrap(fmt.Errorf("fail to upload %s: %w", key, err))
	}

	return nil
}

func (s *s3FileStore) DownloadFileData(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrFileNotFound.Wrapf("%s", key)
		}
		return nil, ErrDownload.Wrap(fmt.Errorf("fail to download %s: %w", key, err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, ErrDownload.Wrap(fmt.Errorf("fail to read %s: %w", key, err))
	}
	return data, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
