package storage

import (
	"testing"
	"time"

	"github.com/mobility-ops/console/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectSinkDisabledWithoutEndpoint(t *testing.T) {
	sink, err := NewObjectSink(&config.Config{})

	require.NoError(t, err)
	assert.Nil(t, sink)
}

func TestNewObjectSinkParsesEndpointURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Endpoint = "https://objetos.example.cl"
	cfg.Storage.AccessKeyID = "clave"
	cfg.Storage.SecretAccessKey = "secreto"
	cfg.Storage.Bucket = "manifiestos"
	cfg.Storage.UploadTimeout = 5

	sink, err := NewObjectSink(cfg)

	require.NoError(t, err)
	require.NotNil(t, sink)
	assert.Equal(t, "objetos.example.cl", sink.client.EndpointURL().Host)
	assert.Equal(t, "https", sink.client.EndpointURL().Scheme)
	assert.Equal(t, 5*time.Second, sink.timeout)
}

func TestManifestKey(t *testing.T) {
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "traslados/2024-03/manifiesto.csv", ManifestKey(day, "manifiesto.csv"))
}
