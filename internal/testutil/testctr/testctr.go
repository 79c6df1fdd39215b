// Package testctr provides shared helpers for testcontainers-based
// integration tests.
package testctr

import (
	"context"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ageImage is the Apache AGE image used for integration tests; it is a
// stock PostgreSQL with the AGE extension preinstalled.
const ageImage = "apache/age:release_PG16_1.5.0"

// SkipIfDockerNotAvailable skips the test when no Docker daemon is
// reachable.
func SkipIfDockerNotAvailable(t *testing.T) {
	t.Helper()

	if os.Getenv("DOCKER_HOST") != "" {
		return
	}
	conn, err := net.DialTimeout("unix", "/var/run/docker.sock", time.Second)
	if err != nil {
		t.Skip("Docker not available")
	}
	conn.Close()
}

var (
	setupOnce sync.Once
	setupURL  string
	setupErr  error
)

// SetupAGE returns a connection string for a PostgreSQL instance with
// the AGE extension available. It honors AGE_TEST_URL for an externally
// provided instance; otherwise it starts one Apache AGE testcontainer
// shared by all tests in the process (the testcontainers reaper cleans
// it up afterwards).
func SetupAGE(t *testing.T) string {
	t.Helper()

	SkipIfDockerNotAvailable(t)
	if testing.Short() {
		t.Skip("Skipping test in short mode")
	}

	if url := os.Getenv("AGE_TEST_URL"); url != "" {
		return url
	}

	setupOnce.Do(func() {
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			ageImage,
			tcpostgres.WithDatabase("benchmark"),
			tcpostgres.WithUsername("benchmark"),
			tcpostgres.WithPassword("benchmark"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(2*time.Minute)),
		)
		if err != nil {
			setupErr = err
			return
		}
		setupURL, setupErr = container.ConnectionString(ctx, "sslmode=disable")
	})

	if setupErr != nil && strings.Contains(setupErr.Error(), "Cannot connect to the Docker daemon") {
		t.Skip("Docker not available")
	}
	require.NoError(t, setupErr)
	return setupURL
}
