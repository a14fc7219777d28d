package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_EnvOverridesFlags(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DB", "test")
	t.Setenv("AUTH_SIGNING_KEY", "secret")

	opts := Parse()

	assert.Equal(t, ":9999", opts.Addr)
	assert.Equal(t, "mongodb://db:27017", opts.MongoURI)
	assert.Equal(t, "test", opts.Database)
	assert.Equal(t, "secret", opts.SigningKey)
}

func TestParse_SigningKeyComesFromEnvOnly(t *testing.T) {
	t.Setenv("AUTH_SIGNING_KEY", "")

	opts := Parse()

	assert.Empty(t, opts.SigningKey)
}
