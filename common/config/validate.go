package config

import (
	"errors"
	"fmt"
	"net/url"
)

const MaxTransferSizeBytes int64 = 2 * 1024 * 1024 * 1024 // 2 GiB

const (
	SenderKindAny   = "any"
	SenderKindEmail = "email"
	SenderKindName  = "name"
)

// Validate reports the first problem which would prevent the repo from serving transfers.
func (c *TransferRepoConfig) Validate() error {
	switch c.Storage.Driver {
	case "s3", "aws":
		if c.Storage.Endpoint == "" && c.Storage.Driver == "s3" {
			return errors.New("storage.endpoint is required (or set " + EnvR2AccountId + ")")
		}
		if c.Storage.AccessKeyId == "" || c.Storage.AccessSecret == "" {
			return errors.New("storage credentials are required")
		}
		if c.Storage.BucketName == "" {
			return errors.New("storage.bucketName is required")
		}
	case "local":
		if c.Storage.LocalSigningKey == "" {
			return errors.New("storage.localSigningKey is required for the local driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Transfers.MaxSizeBytes <= 0 || c.Transfers.MaxSizeBytes > MaxTransferSizeBytes {
		return fmt.Errorf("transfers.maxSizeBytes must be between 1 and %d", MaxTransferSizeBytes)
	}
	if c.Transfers.UploadUrlTtlSeconds <= 0 || c.Transfers.DownloadUrlTtlSeconds <= 0 {
		return errors.New("transfer url lifetimes must be positive")
	}
	switch c.Transfers.SenderKind {
	case SenderKindAny, SenderKindEmail, SenderKindName:
	default:
		return fmt.Errorf("unknown transfers.senderKind %q", c.Transfers.SenderKind)
	}

	u, err := url.Parse(c.General.PublicOrigin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("repo.publicOrigin %q is not an absolute url", c.General.PublicOrigin)
	}

	if c.Email.Enabled && c.Email.ApiKey == "" {
		return errors.New("email.apiKey is required when email is enabled (or set " + EnvResendApiKey + ")")
	}
	if c.Notifications.NumWorkers <= 0 {
		return errors.New("notifications.numWorkers must be positive")
	}
	if c.Redis.Enabled && len(c.Redis.Shards) == 0 {
		return errors.New("redis is enabled but no shards are configured")
	}
	return nil
}
