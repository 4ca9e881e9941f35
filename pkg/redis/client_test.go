package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	opts, err := options(Config{URL: "rediss://:urlpass@cache.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "cache.example.com:6379", opts.Addr)
	assert.Equal(t, "urlpass", opts.Password)
	assert.NotNil(t, opts.TLSConfig)

	opts, err = options(Config{URL: "redis://localhost:6380/2", Password: "explicit"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "explicit", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Nil(t, opts.TLSConfig)
}

func TestOptionsErrors(t *testing.T) {
	_, err := options(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = options(Config{URL: "http://localhost"})
	assert.Error(t, err)

	_, err = options(Config{URL: "redis://localhost/abc"})
	assert.Error(t, err)
}
