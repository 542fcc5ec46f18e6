package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"API_FIRESTORE_PROJECT_ID": "foodchainx-test",
		"API_AUTH_JWT_SECRET":      "test-secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithEnvFile(""), WithoutSystemEnv(), WithEnvMap(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "foodchainx-test", cfg.Firestore.ProjectID)
	assert.Equal(t, "foodchainx-test", cfg.Notifications.ProjectID)
	assert.Equal(t, "notification-emails", cfg.Notifications.Topic)
	assert.Equal(t, "https://api.thingspeak.com", cfg.Telemetry.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Telemetry.CacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["API_SERVER_PORT"] = "9090"
	env["API_SERVER_READ_TIMEOUT"] = "5s"
	env["API_NOTIFICATIONS_PROJECT_ID"] = "other-project"
	env["API_TELEMETRY_CACHE_TTL"] = "2m"

	cfg, err := Load(WithEnvFile(""), WithoutSystemEnv(), WithEnvMap(env))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "other-project", cfg.Notifications.ProjectID)
	assert.Equal(t, 2*time.Minute, cfg.Telemetry.CacheTTL)
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	env := baseEnv()
	env["API_SERVER_WRITE_TIMEOUT"] = "soon"

	cfg, err := Load(WithEnvFile(""), WithoutSystemEnv(), WithEnvMap(env))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
}

func TestLoadMissingRequiredFields(t *testing.T) {
	_, err := Load(WithEnvFile(""), WithoutSystemEnv(), WithEnvMap(map[string]string{}))
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields(), "Firestore.ProjectID")
	assert.Contains(t, vErr.Fields(), "Auth.JWTSecret")
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/.env"
	content := "API_FIRESTORE_PROJECT_ID=dotenv-project\nAPI_AUTH_JWT_SECRET=dotenv-secret\n# comment\nexport API_SERVER_PORT=7070\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv())
	require.NoError(t, err)
	assert.Equal(t, "dotenv-project", cfg.Firestore.ProjectID)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestEnvMapTakesPrecedenceOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/.env"
	require.NoError(t, os.WriteFile(path, []byte("API_SERVER_PORT=7070\n"), 0o600))

	env := baseEnv()
	env["API_SERVER_PORT"] = "6060"

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(env))
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Server.Port)
}
