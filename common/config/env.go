package config

import (
	"fmt"
	"strings"
)

const (
	EnvR2AccountId       = "R2_ACCOUNT_ID"
	EnvR2AccessKeyId     = "R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "R2_BUCKET_NAME"
	EnvResendApiKey      = "RESEND_API_KEY"
	EnvPublicOrigin      = "PUBLIC_ORIGIN"
	EnvConfigPath        = "REPO_CONFIG"
)

// LookupFunc matches os.LookupEnv so tests can supply their own environment.
type LookupFunc func(key string) (string, bool)

// ApplyEnvironment overlays credentials and deployment settings from the environment. Values
// from the environment always win over the YAML files.
func ApplyEnvironment(c *TransferRepoConfig, lookup LookupFunc) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvR2AccountId); ok {
		c.Storage.AccountId = v
	}
	if v, ok := get(EnvR2AccessKeyId); ok {
		c.Storage.AccessKeyId = v
	}
	if v, ok := get(EnvR2SecretAccessKey); ok {
		c.Storage.AccessSecret = v
	}
	if v, ok := get(EnvR2BucketName); ok {
		c.Storage.BucketName = v
	}
	if v, ok := get(EnvResendApiKey); ok {
		c.Email.ApiKey = v
		c.Email.Enabled = true
	}
	if v, ok := get(EnvPublicOrigin); ok {
		c.General.PublicOrigin = v
	}

	// Cloudflare R2 is S3-compatible under a per-account host
	if c.Storage.Endpoint == "" && c.Storage.AccountId != "" {
		c.Storage.Endpoint = R2Endpoint(c.Storage.AccountId)
		c.Storage.Region = "auto"
		c.Storage.UseSsl = true
	}
	c.General.PublicOrigin = strings.TrimRight(c.General.PublicOrigin, "/")
}

func R2Endpoint(accountId string) string {
	return fmt.Sprintf("%s.r2.cloudflarestorage.com", accountId)
}
