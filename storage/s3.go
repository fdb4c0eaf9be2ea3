package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"research-api/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// ObjectAPI ist der Teil des S3-Clients, den die Backups brauchen.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpunkt.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	}), nil
}

// Backups legt Sicherungen unter einem Präfix im Bucket ab und rotiert sie.
type Backups struct {
	api    ObjectAPI
	bucket string
	prefix string
	log    *zap.Logger
}

func NewBackups(api ObjectAPI, bucket, prefix string, log *zap.Logger) *Backups {
	return &Backups{api: api, bucket: bucket, prefix: prefix, log: log}
}

// Upload speichert data unter prefix+name und gibt den vollständigen Schlüssel zurück.
func (b *Backups) Upload(ctx context.Context, name string, data []byte) (string, error) {
	key := b.prefix + name
	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", b.bucket, key, err)
	}
	return key, nil
}

// Rotate behält die neuesten keep Objekte unter dem Präfix und löscht den Rest.
// Einzelne Löschfehler werden geloggt, aber nicht abgebrochen.
func (b *Backups) Rotate(ctx context.Context, keep int) ([]string, error) {
	var objects []types.Object
	p := s3.NewListObjectsV2Paginator(b.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		objects = append(objects, page.Contents...)
	}
	if len(objects) <= keep {
		b.log.Info("No backup rotation needed", zap.Int("backups", len(objects)), zap.Int("keep", keep))
		return nil, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		ti, tj := aws.ToTime(objects[i].LastModified), aws.ToTime(objects[j].LastModified)
		if ti.Equal(tj) {
			return aws.ToString(objects[i].Key) > aws.ToString(objects[j].Key)
		}
		return ti.After(tj)
	})

	var deleted []string
	for _, obj := range objects[keep:] {
		key := aws.ToString(obj.Key)
		_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    obj.Key,
		})
		if err != nil {
			b.log.Error("Failed to delete old backup", zap.String("key", key), zap.Error(err))
			continue
		}
		b.log.Info("Old backup deleted", zap.String("key", key))
		deleted = append(deleted, key)
	}
	return deleted, nil
}
