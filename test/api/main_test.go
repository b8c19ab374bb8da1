package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"testing"
	"time"

	"github.com/Nhu-Hau/study-rooms/internal/config"
	"github.com/Nhu-Hau/study-rooms/internal/modules/tests"
	"github.com/Nhu-Hau/study-rooms/internal/server"

	"github.com/docker/go-connections/nat"
	"github.com/joho/godotenv"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type IntegrationTestFixture struct {
	client  *http.Client
	baseURL string
	db      *sql.DB
	conf    config.Config
	media   *mediaStub
	storage *storageStub
}

var fixture = IntegrationTestFixture{}

func TestMain(m *testing.M) {
	rootPath := "../../"
	if err := os.Setenv(config.RootPathEnv, rootPath); err != nil {
		log.Fatal(err)
	}

	if err := godotenv.Load(path.Join(rootPath, "config.env")); err != nil {
		log.Fatal(err)
	}

	// External collaborators are stubbed in-process - only the stores
	// run in containers.
	media := newMediaStub()
	defer media.Close()

	storage := newStorageStub()
	defer storage.Close()

	if err := os.Setenv(config.MediaHostEnv, media.URL()); err != nil {
		log.Fatal(err)
	}
	if err := os.Setenv(config.StorageEndpointEnv, storage.URL()); err != nil {
		log.Fatal(err)
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conf.Logger = zap.NewNop()

	pgPort := nat.Port(fmt.Sprintf("%d", 5432))
	natsPort := nat.Port(fmt.Sprintf("%d", 4222))

	waitStrategies := map[string]wait.Strategy{
		"study-rooms-postgres": wait.ForSQL(pgPort, "postgres", func(string, nat.Port) string { return conf.DatabaseURL }),
		"study-rooms-nats":     wait.ForListeningPort(natsPort),
	}

	ctx := context.Background()

	composePath := path.Join(rootPath, "docker-compose.yml")
	f, err := tests.NewLocalTestFixture(composePath, waitStrategies)
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := f.Stop(ctx); err != nil {
			log.Fatal(err)
		}
	}()

	if err := f.Start(ctx); err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", conf.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	fixture = IntegrationTestFixture{
		client:  &http.Client{},
		baseURL: fmt.Sprintf("http://localhost:%d", conf.Port),
		db:      db,
		conf:    conf,
		media:   media,
		storage: storage,
	}

	srv, err := server.NewHTTPServer(conf)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal(err)
		}
	}()

	if err := waitForServer(fixture.baseURL); err != nil {
		log.Fatal(err)
	}

	_ = m.Run()
}

func waitForServer(baseURL string) error {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		response, err := http.Get(baseURL + "/rooms")
		if err == nil {
			response.Body.Close()
			return nil
		}

		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server at %s did not come up", baseURL)
}
