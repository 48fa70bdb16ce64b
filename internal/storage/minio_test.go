package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/altconstitution/site/internal/logging"
)

func startMinio(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping minio container in -short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").
				WithPort("9000/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestMinioStorage(t *testing.T) {
	endpoint := startMinio(t)
	ctx := context.Background()

	s, err := NewMinioStorage(ctx, MinioOptions{
		Endpoint:   endpoint,
		AccessKey:  "minioadmin",
		SecretKey:  "minioadmin",
		Bucket:     "pdf",
		PublicBase: "http://" + endpoint + "/pdf",
	}, logging.Discard())
	require.NoError(t, err)

	upload := func(key, body string) error {
		return s.Upload(ctx, key, bytes.NewReader([]byte(body)), int64(len(body)), "application/pdf")
	}

	require.NoError(t, upload("Explanation/b.pdf", "b"))
	require.NoError(t, upload("Explanation/a.pdf", "a"))
	require.NoError(t, upload("Explanation/.emptyFolderPlaceholder", ""))
	require.NoError(t, upload("Listen Up/c.pdf", "c"))

	t.Run("list is scoped to the folder", func(t *testing.T) {
		objects, err := s.List(ctx, "Explanation")
		require.NoError(t, err)
		var names []string
		for _, o := range objects {
			names = append(names, o.Name)
		}
		assert.Equal(t, []string{"a.pdf", "b.pdf"}, names)
	})

	t.Run("duplicate upload is rejected", func(t *testing.T) {
		err := upload("Explanation/a.pdf", "again")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAlreadyExists))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Remove(ctx, "Explanation/a.pdf"))
		objects, err := s.List(ctx, "Explanation")
		require.NoError(t, err)
		require.Len(t, objects, 1)
		assert.Equal(t, "b.pdf", objects[0].Name)
	})

	t.Run("empty folder", func(t *testing.T) {
		objects, err := s.List(ctx, "Nothing Here")
		require.NoError(t, err)
		assert.Empty(t, objects)
	})
}
