package config

func NewDefaultConfig() *TransferRepoConfig {
	return &TransferRepoConfig{
		General: GeneralConfig{
			BindAddress:     "127.0.0.1",
			Port:            8000,
			PublicOrigin:    "http://localhost:8000",
			LogDirectory:    "logs",
			LogColors:       false,
			JsonLogs:        false,
			LogLevel:        "info",
			TrustAnyForward: false,
		},
		Storage: StorageConfig{
			Driver:         "s3",
			Endpoint:       "",
			Region:         "auto",
			BucketName:     "transfers",
			UseSsl:         true,
			ForcePathStyle: false,
		},
		Transfers: TransfersConfig{
			MaxSizeBytes:           MaxTransferSizeBytes,
			UploadUrlTtlSeconds:    900,  // 15 minutes
			DownloadUrlTtlSeconds:  3600, // 1 hour
			SenderKind:             SenderKindAny,
			VerifyUploadOnResolve:  true,
			UploadMissCacheSeconds: 5,
		},
		Email: EmailConfig{
			Enabled:        false,
			From:           "Transfers <transfers@example.org>",
			Subject:        "Your file is ready to share",
			LinkExpiryDays: 7,
		},
		Notifications: NotificationsConfig{
			NumWorkers:     4,
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			Enabled:        true,
			TrackedMinutes: 30,
			CleanupMinutes: 10,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			BurstCount:        10,
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			BindAddress: "127.0.0.1",
			Port:        9000,
		},
		Sentry: SentryConfig{
			Enabled:     false,
			Environment: "",
			Debug:       false,
		},
		Redis: RedisConfig{
			Enabled:             false,
			Shards:              []RedisShardConfig{},
			DbNum:               0,
			PresignCacheSeconds: 600,
		},
	}
}
