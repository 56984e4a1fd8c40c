package cache

import (
	"context"
	"strconv"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gpa-api/pkg/config"
)

func TestNewRedisConnects(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	host, portRaw, _ := strings.Cut(server.Addr(), ":")
	port, err := strconv.Atoi(portRaw)
	require.NoError(t, err)

	client, err := NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestNewRedisUnreachable(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	host, portRaw, _ := strings.Cut(server.Addr(), ":")
	port, _ := strconv.Atoi(portRaw)
	server.Close()

	_, err = NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}
