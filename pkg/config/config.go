// Package config loads the SCIE configuration surface (SPEC_FULL §6)
// from environment variables with documented defaults, matching the
// teacher's pkg/config/config.go loader style.
package config

import (
	"os"
	"strconv"
)

// IntegrityWeights holds the (open question, §9) per-axis weights applied
// before normalizing |V|. Defaults to equal weighting.
type IntegrityWeights struct {
	X float64
	Y float64
	Z float64
}

// Config is the single configuration object recognized by every SCIE
// component.
type Config struct {
	CycleIntervalSeconds        int
	WorkerCount                 int
	CacheTTLSeconds             int
	IncrementalFallbackFraction float64
	Setpoint                    float64
	KP, KI, KD                  float64
	UMax, IMax                  float64
	WindowSize                  int
	DetectionRateFloor          float64
	MIThreshold                 float64
	DensityThreshold            float64
	MaxLinksPerCluster          int

	IntegrityWeights IntegrityWeights

	// Ambient / backend selection — not in the normative §6 table. Loaded
	// from the environment; CacheBackend, RedisAddr, StoreBackend,
	// DatabaseURL and LogLevel are not read anywhere else in this module
	// (the CLI always uses the in-memory result cache and the file WORM
	// store).
	CacheBackend string // "memory" | "redis"
	RedisAddr    string
	StoreBackend string // "file" | "sqlite" | "postgres"
	DatabaseURL  string
	LogLevel     string
	OTLPEndpoint string
	OTelEnabled  bool

	// Artifact sink selection (§6 "Artifact storage interface").
	ArtifactSinkBackend string // "fs" | "s3" | "gcs"
	ArtifactS3Bucket    string
	ArtifactS3Region    string
	ArtifactS3Endpoint  string
	ArtifactS3Prefix    string
	ArtifactGCSBucket   string
	ArtifactGCSPrefix   string
	ArtifactSinkRPS     float64
	ArtifactSinkBurst   int
}

// Load reads configuration from the environment, falling back to the
// defaults in SPEC_FULL §6.
func Load() *Config {
	return &Config{
		CycleIntervalSeconds:        envInt("SCIE_CYCLE_INTERVAL_SECONDS", 300),
		WorkerCount:                 envInt("SCIE_WORKER_COUNT", defaultWorkerCount()),
		CacheTTLSeconds:             envInt("SCIE_CACHE_TTL_SECONDS", 60),
		IncrementalFallbackFraction: envFloat("SCIE_INCREMENTAL_FALLBACK_FRACTION", 0.78),
		Setpoint:                    envFloat("SCIE_SETPOINT", 0.70),
		KP:                          envFloat("SCIE_K_P", 0.4),
		KI:                          envFloat("SCIE_K_I", 0.05),
		KD:                          envFloat("SCIE_K_D", 0.1),
		UMax:                        envFloat("SCIE_U_MAX", 0.05),
		IMax:                        envFloat("SCIE_I_MAX", 0.15),
		WindowSize:                  envInt("SCIE_WINDOW_SIZE", 30),
		DetectionRateFloor:          envFloat("SCIE_DETECTION_RATE_FLOOR", 0.98),
		MIThreshold:                 envFloat("SCIE_MI_THRESHOLD", 0.5),
		DensityThreshold:            envFloat("SCIE_DENSITY_THRESHOLD", 0.05),
		MaxLinksPerCluster:          envInt("SCIE_MAX_LINKS_PER_CLUSTER", 10),

		IntegrityWeights: IntegrityWeights{
			X: envFloat("SCIE_WEIGHT_X", 1.0),
			Y: envFloat("SCIE_WEIGHT_Y", 1.0),
			Z: envFloat("SCIE_WEIGHT_Z", 1.0),
		},

		CacheBackend: envStr("SCIE_CACHE_BACKEND", "memory"),
		RedisAddr:    envStr("SCIE_REDIS_ADDR", "localhost:6379"),
		StoreBackend: envStr("SCIE_STORE_BACKEND", "file"),
		DatabaseURL:  envStr("SCIE_DATABASE_URL", ""),
		LogLevel:     envStr("SCIE_LOG_LEVEL", "INFO"),
		OTLPEndpoint: envStr("SCIE_OTLP_ENDPOINT", "localhost:4317"),
		OTelEnabled:  envStr("SCIE_OTEL_ENABLED", "false") == "true",

		ArtifactSinkBackend: envStr("SCIE_ARTIFACT_SINK_BACKEND", "fs"),
		ArtifactS3Bucket:    envStr("ARTIFACT_S3_BUCKET", ""),
		ArtifactS3Region:    envStr("ARTIFACT_S3_REGION", envStr("AWS_REGION", "us-east-1")),
		ArtifactS3Endpoint:  envStr("ARTIFACT_S3_ENDPOINT", ""),
		ArtifactS3Prefix:    envStr("ARTIFACT_S3_PREFIX", ""),
		ArtifactGCSBucket:   envStr("ARTIFACT_GCS_BUCKET", ""),
		ArtifactGCSPrefix:   envStr("ARTIFACT_GCS_PREFIX", ""),
		ArtifactSinkRPS:     envFloat("SCIE_ARTIFACT_SINK_RPS", 20),
		ArtifactSinkBurst:   envInt("SCIE_ARTIFACT_SINK_BURST", 10),
	}
}

func defaultWorkerCount() int {
	n := workerCPUCount()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
