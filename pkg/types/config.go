package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"egov"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Blob storage for uploaded files: "disk" or "s3"
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"disk"`
	StorageRoot   string `envconfig:"STORAGE_ROOT" default:"uploads"`
	S3BucketName  string `envconfig:"S3_BUCKET_NAME"`

	// Doctor registry cache, disabled when empty
	RedisURL          string `envconfig:"REDIS_URL"`
	DoctorCacheTTLSec uint   `envconfig:"DOCTOR_CACHE_TTL_SEC" default:"300"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}
