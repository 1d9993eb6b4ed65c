package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// go test -v --run TestLoadDefaults
func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "thresholds:\n  backend: static\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Schedule.IngestInterval)
	assert.Equal(t, 30*time.Second, cfg.Schedule.IngestRetry)
	assert.Equal(t, time.Second, cfg.Schedule.MonitorInterval)
	assert.Equal(t, 5*time.Second, cfg.Schedule.MonitorRetry)
	assert.Equal(t, 30*time.Second, cfg.Notifications.Interval)
	assert.Equal(t, "crypto_alerts", cfg.Notifications.Topic)
	assert.Len(t, cfg.Symbols, 12)
	assert.Equal(t, "btc", cfg.SymbolIDs()[0])
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
}

// go test -v --run TestLoadFileAndEnv
func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
symbols:
  - symbol: BTC
    name: Bitcoin
    coingecko_id: bitcoin
    binance_pair: btcbrl
thresholds:
  backend: static
  static:
    BTC:
      low: 300000
`)
	t.Setenv("NOTIFICATIONS_INTERVAL", "45s")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Symbols, 1)
	assert.Equal(t, "btc", cfg.Symbols[0].Symbol)
	assert.Equal(t, "BTCBRL", cfg.Symbols[0].BinancePair)
	assert.Equal(t, 45*time.Second, cfg.Notifications.Interval)
	assert.Equal(t, 8080, cfg.Server.Port)

	btc, ok := cfg.Thresholds.Static["btc"]
	require.True(t, ok)
	require.NotNil(t, btc.Low)
	assert.Equal(t, 300000.0, *btc.Low)
	assert.Nil(t, btc.High)
}

// go test -v --run TestLoadRejectsInvalid
func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "thresholds:\n  backend: etcd\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "thresholds:\n  backend: static\nschedule:\n  monitor_interval: 0s\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

type fakeParams map[string]string

func (f fakeParams) GetParameter(_ context.Context, name string, _ bool) (string, error) {
	v, ok := f[name]
	if !ok {
		return "", errors.New("parameter not found")
	}
	return v, nil
}

// go test -v --run TestResolveDSN
func TestResolveDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:          "localhost",
		Port:          5432,
		User:          "postgres",
		Password:      "yourpw",
		DBName:        "cryptopusher",
		SSLMode:       "disable",
		HostParam:     "/db/host",
		UserParam:     "/db/user",
		PasswordParam: "/db/password",
	}
	params := fakeParams{"/db/host": "db.internal", "/db/user": "svc", "/db/password": "secret"}

	dev, err := cfg.ResolveDSN(context.Background(), "dev", params)
	require.NoError(t, err)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=yourpw dbname=cryptopusher sslmode=disable", dev)

	prod, err := cfg.ResolveDSN(context.Background(), "prod", params)
	require.NoError(t, err)
	assert.Equal(t, "host=db.internal port=5432 user=svc password=secret dbname=cryptopusher sslmode=disable", prod)

	_, err = cfg.ResolveDSN(context.Background(), "prod", fakeParams{})
	assert.Error(t, err)

	assert.Contains(t, cfg.AdminDSN(), "dbname=postgres")
}

// go test -v --run TestServiceAccountJSON
func TestServiceAccountJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"project_id":"local"}`), 0o600))

	fb := FirebaseConfig{ServiceAccountPath: path, ServiceAccountParam: "/firebase/sa"}
	params := fakeParams{"/firebase/sa": `{"project_id":"remote"}`}

	raw, err := fb.ServiceAccountJSON(context.Background(), "dev", params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"project_id":"local"}`, string(raw))

	raw, err = fb.ServiceAccountJSON(context.Background(), "prod", params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"project_id":"remote"}`, string(raw))
}
