package datastores

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/metrics"
	"github.com/t2bot/transfer-repo/util"
)

// awsDatastore signs with the AWS SDK. Upload URLs bind Content-Type and Content-Length.
type awsDatastore struct {
	client  *awss3.Client
	presign *awss3.PresignClient
	bucket  string
}

func newAwsDatastore(conf config.StorageConfig) (*awsDatastore, error) {
	region := conf.Region
	if region == "" {
		region = "auto"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyId, conf.AccessSecret, "")),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "error loading aws config")
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointUrl(conf.Endpoint, conf.UseSsl))
		}
		o.UsePathStyle = conf.ForcePathStyle
	})
	return &awsDatastore{
		client:  client,
		presign: awss3.NewPresignClient(client),
		bucket:  conf.BucketName,
	}, nil
}

func endpointUrl(endpoint string, ssl bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if ssl {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (s *awsDatastore) Driver() string {
	return DriverAws
}

func (s *awsDatastore) countOp(op string) {
	metrics.S3Operations.With(prometheus.Labels{"driver": DriverAws, "operation": op}).Inc()
}

func (s *awsDatastore) PutObject(ctx rcontext.RequestContext, key string, data io.Reader, size int64, contentType string) error {
	s.countOp("PutObject")
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	return storageError("put", key, err)
}

func (s *awsDatastore) GetObject(ctx rcontext.RequestContext, key string) (io.ReadCloser, error) {
	s.countOp("GetObject")
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, storageError("get", key, translateAwsError(err))
	}
	return out.Body, nil
}

func (s *awsDatastore) StatObject(ctx rcontext.RequestContext, key string) (*ObjectInfo, error) {
	s.countOp("HeadObject")
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, storageError("stat", key, translateAwsError(err))
	}
	return &ObjectInfo{
		Key:         key,
		SizeBytes:   aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

func (s *awsDatastore) PresignUpload(ctx rcontext.RequestContext, key string, contentType string, contentLength int64, ttl time.Duration) (string, error) {
	s.countOp("PresignPutObject")
	input := &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if contentLength > 0 {
		input.ContentLength = aws.Int64(contentLength)
	}
	req, err := s.presign.PresignPutObject(ctx, input, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", storageError("presign_put", key, err)
	}
	return req.URL, nil
}

func (s *awsDatastore) PresignDownload(ctx rcontext.RequestContext, key string, ttl time.Duration, downloadFilename string) (string, error) {
	s.countOp("PresignGetObject")
	req, err := s.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(util.AttachmentDisposition(downloadFilename)),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", storageError("presign_get", key, err)
	}
	return req.URL, nil
}

func translateAwsError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return common.ErrObjectNotFound
		}
	}
	return err
}
