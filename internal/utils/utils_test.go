package utils

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("COUNTIES_TEST_STR", " value ")
	t.Setenv("COUNTIES_TEST_BOOL", "false")
	t.Setenv("COUNTIES_TEST_BAD_BOOL", "nope")
	t.Setenv("COUNTIES_TEST_INT", "42")
	t.Setenv("COUNTIES_TEST_FLOAT", "12.5")
	t.Setenv("COUNTIES_TEST_SECONDS", "90")

	assert.Equal(t, "value", EnvString("COUNTIES_TEST_STR", "def"))
	assert.Equal(t, "def", EnvString("COUNTIES_TEST_UNSET", "def"))
	assert.False(t, EnvBool("COUNTIES_TEST_BOOL", true))
	assert.True(t, EnvBool("COUNTIES_TEST_BAD_BOOL", true))
	assert.Equal(t, 42, EnvInt("COUNTIES_TEST_INT", 1))
	assert.Equal(t, 1, EnvInt("COUNTIES_TEST_STR", 1))
	assert.Equal(t, 12.5, EnvFloat("COUNTIES_TEST_FLOAT", 0))
	assert.Equal(t, 90*time.Second, EnvSeconds("COUNTIES_TEST_SECONDS", time.Minute))
	assert.Equal(t, time.Minute, EnvSeconds("COUNTIES_TEST_UNSET", time.Minute))
}

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_USER", "app")
	t.Setenv("PG_PASSWORD", "p@ss word")
	t.Setenv("PG_DB", "")
	t.Setenv("PG_SSLMODE", "")

	u, err := url.Parse(BuildPostgresDSNFromEnv())
	require.NoError(t, err)
	assert.Equal(t, "db.internal:6543", u.Host)
	assert.Equal(t, "/counties", u.Path)
	assert.Equal(t, "app", u.User.Username())
	pass, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pass)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestOpenRedisDisabled(t *testing.T) {
	t.Setenv("REDIS_ENABLE", "false")
	assert.Nil(t, OpenRedisFromEnv())
	assert.Nil(t, OpenRedis("", "", 0))
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")
	require.NoError(t, EnsureSelfSignedCert(cert, key, "counties.local", "10.0.0.5"))

	_, err := tls.LoadX509KeyPair(cert, key)
	require.NoError(t, err)

	raw, err := os.ReadFile(cert)
	require.NoError(t, err)
	block, _ := pem.Decode(raw)
	require.NotNil(t, block)
	parsed, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "counties.local", parsed.Subject.CommonName)
	assert.Contains(t, parsed.DNSNames, "counties.local")
	assert.Len(t, parsed.IPAddresses, 3)

	// 已存在时不覆盖
	before, err := os.Stat(cert)
	require.NoError(t, err)
	require.NoError(t, EnsureSelfSignedCert(cert, key))
	after, err := os.Stat(cert)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}
