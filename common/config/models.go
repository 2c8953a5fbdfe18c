package config

type GeneralConfig struct {
	BindAddress     string `yaml:"bindAddress"`
	Port            int    `yaml:"port"`
	PublicOrigin    string `yaml:"publicOrigin"`
	LogDirectory    string `yaml:"logDirectory"`
	LogColors       bool   `yaml:"logColors"`
	JsonLogs        bool   `yaml:"jsonLogs"`
	LogLevel        string `yaml:"logLevel"`
	TrustAnyForward bool   `yaml:"trustAnyForwardedAddress"`
}

type StorageConfig struct {
	// Driver is one of "s3" (minio client), "aws" (AWS SDK) or "local" (in-process, development only)
	Driver          string `yaml:"driver"`
	Endpoint        string `yaml:"endpoint"`
	AccountId       string `yaml:"accountId"`
	Region          string `yaml:"region"`
	AccessKeyId     string `yaml:"accessKeyId"`
	AccessSecret    string `yaml:"accessSecret"`
	BucketName      string `yaml:"bucketName"`
	UseSsl          bool   `yaml:"ssl"`
	ForcePathStyle  bool   `yaml:"forcePathStyle"`
	LocalSigningKey string `yaml:"localSigningKey"`
	// LocalPath is where the local driver keeps objects. Empty keeps them in memory.
	LocalPath string `yaml:"localPath"`
}

type TransfersConfig struct {
	MaxSizeBytes           int64  `yaml:"maxSizeBytes"`
	UploadUrlTtlSeconds    int    `yaml:"uploadUrlTtlSeconds"`
	DownloadUrlTtlSeconds  int    `yaml:"downloadUrlTtlSeconds"`
	SenderKind             string `yaml:"senderKind"`
	VerifyUploadOnResolve  bool   `yaml:"verifyUploadOnResolve"`
	UploadMissCacheSeconds int    `yaml:"uploadMissCacheSeconds"`
}

type EmailConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ApiKey         string `yaml:"apiKey"`
	From           string `yaml:"from"`
	Subject        string `yaml:"subject"`
	LinkExpiryDays int    `yaml:"linkExpiryDays"`
}

type NotificationsConfig struct {
	NumWorkers     int `yaml:"numWorkers"`
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

type CacheConfig struct {
	Enabled        bool `yaml:"enabled"`
	TrackedMinutes int  `yaml:"trackedMinutes"`
	CleanupMinutes int  `yaml:"cleanupMinutes"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	BurstCount        int     `yaml:"burst"`
}

type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bindAddress"`
	Port        int    `yaml:"port"`
}

type SentryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dsn         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}

type RedisConfig struct {
	Enabled             bool               `yaml:"enabled"`
	Shards              []RedisShardConfig `yaml:"shards,flow"`
	DbNum               int                `yaml:"databaseNumber"`
	PresignCacheSeconds int                `yaml:"presignCacheSeconds"`
}

type RedisShardConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"addr"`
}

type TransferRepoConfig struct {
	General       GeneralConfig       `yaml:"repo"`
	Storage       StorageConfig       `yaml:"storage"`
	Transfers     TransfersConfig     `yaml:"transfers"`
	Email         EmailConfig         `yaml:"email"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Cache         CacheConfig         `yaml:"cache"`
	RateLimit     RateLimitConfig     `yaml:"rateLimit"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Sentry        SentryConfig        `yaml:"sentry"`
	Redis         RedisConfig         `yaml:"redis"`
}
