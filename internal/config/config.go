package config

import (
	"path"

	"github.com/Nhu-Hau/study-rooms/internal/env"

	"go.uber.org/zap"
)

const (
	PortEnv        = "PORT"
	DatabaseUrlEnv = "DATABASE_URL"
	RootPathEnv    = "ROOT_PATH"

	AuthSecretEnv = "AUTH_SECRET"

	MediaHostEnv      = "MEDIA_HOST"
	MediaWSEndpoint   = "MEDIA_WS_ENDPOINT"
	MediaAPIKeyEnv    = "MEDIA_API_KEY"
	MediaAPISecretEnv = "MEDIA_API_SECRET"

	StorageEndpointEnv = "STORAGE_ENDPOINT"
	StorageBucketEnv   = "STORAGE_BUCKET"
	StorageTokenEnv    = "STORAGE_TOKEN"

	NatsURLEnv = "NATS_URL"
)

// MediaConfiguration holds the coordinates of the external real-time
// media service: the admin API host, the endpoint clients connect to,
// and the key pair used to sign admin requests and join tokens.
type MediaConfiguration struct {
	Host       string
	WSEndpoint string
	APIKey     string
	APISecret  string
}

type StorageConfiguration struct {
	Endpoint string
	Bucket   string
	Token    string
}

type Config struct {
	Logger *zap.Logger

	Port           int
	DatabaseURL    string
	MigrationsPath string

	AuthSecret string

	Media   MediaConfiguration
	Storage StorageConfiguration

	NatsURL string
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, err
	}

	port := env.MustGetInt(PortEnv)
	dbURL := env.MustGetString(DatabaseUrlEnv)

	rootPath := env.MustGetString(RootPathEnv)
	migrationsPath := path.Join(rootPath, "db", "migrations")

	return Config{
		Logger:         logger,
		Port:           port,
		DatabaseURL:    dbURL,
		MigrationsPath: migrationsPath,
		AuthSecret:     env.MustGetString(AuthSecretEnv),
		Media: MediaConfiguration{
			Host:       env.MustGetString(MediaHostEnv),
			WSEndpoint: env.MustGetString(MediaWSEndpoint),
			APIKey:     env.MustGetString(MediaAPIKeyEnv),
			APISecret:  env.MustGetString(MediaAPISecretEnv),
		},
		Storage: StorageConfiguration{
			Endpoint: env.MustGetString(StorageEndpointEnv),
			Bucket:   env.MustGetString(StorageBucketEnv),
			Token:    env.MustGetString(StorageTokenEnv),
		},
		NatsURL: env.GetStringOrDefault(NatsURLEnv, ""),
	}, nil
}
