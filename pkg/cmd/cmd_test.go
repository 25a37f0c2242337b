package cmd

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dukex/operion-console/pkg/gateway"
	"github.com/dukex/operion-console/pkg/otelhelper"
	"github.com/dukex/operion-console/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersistenceProvider(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://u:p@localhost/db", "postgres"},
		{"postgresql://localhost/db", "postgresql"},
		{"redis://localhost:6379/0", "redis"},
		{"file:///var/lib/console", "file"},
		{"./data", "file"},
		{"mysql://localhost/db", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePersistenceProvider(tt.url))
		})
	}
}

func TestNewPersistence_File(t *testing.T) {
	p, err := NewPersistence(context.Background(), slog.Default(), "file://"+t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)
}

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus("gochannel", "", "", slog.Default())
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, err = NewEventBus("kafka", "", "cg", slog.Default())
	assert.Error(t, err)

	_, err = NewEventBus("rabbitmq", "", "", slog.Default())
	assert.Error(t, err)
}

func TestNewStores(t *testing.T) {
	ctx := context.Background()

	remote, err := NewStores(ctx, StoreConfig{BackendURL: "http://backend.local", DatabaseURL: t.TempDir()}, nil, nil, otelhelper.NoopTracer(), slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &gateway.Client{}, remote.Store)
	assert.Nil(t, remote.Catalog)
	assert.NoError(t, remote.Close(ctx))

	local, err := NewStores(ctx, StoreConfig{DatabaseURL: t.TempDir()}, nil, nil, otelhelper.NoopTracer(), slog.Default())
	require.NoError(t, err)
	assert.NotNil(t, local.Catalog)

	_, ok := local.Health(ctx)
	assert.True(t, ok)
	assert.NoError(t, local.Close(ctx))
}
