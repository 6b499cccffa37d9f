package envconf_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/centraunit/condreg"
	"github.com/centraunit/condreg/envconf"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSupplierBuildsSnapshot(t *testing.T) {
	t.Setenv("CONDREG_TEST_FLAG", "true")
	path := writeConfig(t, `
mail:
  provider: sendgrid
profiles:
  active: "prod, metrics"
`)

	pinned := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	supplier, err := envconf.New(path, envconf.WithClock(func() time.Time { return pinned }))
	require.NoError(t, err)

	env := supplier.Snapshot()

	provider, ok := env.Property("mail.provider")
	require.True(t, ok)
	require.Equal(t, "sendgrid", provider)

	require.True(t, env.HasProfile("prod"))
	require.True(t, env.HasProfile("metrics"))
	require.False(t, env.HasProfile("dev"))

	require.True(t, condreg.Evaluate(condreg.EnvVarTruthy("CONDREG_TEST_FLAG"), env))
	require.Equal(t, pinned, env.Clock())
}

func TestSupplierCachesSnapshot(t *testing.T) {
	path := writeConfig(t, "mail:\n  provider: smtp\n")

	supplier, err := envconf.New(path)
	require.NoError(t, err)

	first := supplier.Snapshot()
	second := supplier.Snapshot()
	require.Same(t, first, second, "snapshots within the TTL should be identical")

	supplier.Invalidate()
	third := supplier.Snapshot()
	require.NotSame(t, first, third, "invalidation should force a rebuild")
}

func TestSupplierMissingConfig(t *testing.T) {
	_, err := envconf.New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestSupplierDrivesRegistry(t *testing.T) {
	path := writeConfig(t, "mail:\n  provider: sendgrid\n")

	supplier, err := envconf.New(path)
	require.NoError(t, err)

	registry := condreg.NewRegistry()
	registry.MustRegister("email", nil,
		func() (any, error) { return "smtp-instance", nil }, condreg.AsDefault())
	registry.MustRegister("email",
		condreg.PropertyEquals("mail.provider", "sendgrid", "smtp"),
		func() (any, error) { return "sendgrid-instance", nil })

	instance, err := registry.Resolve("email", supplier.Snapshot())
	require.NoError(t, err)
	require.Equal(t, "sendgrid-instance", instance)
}
