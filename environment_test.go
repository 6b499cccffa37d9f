package condreg_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/centraunit/condreg"
)

func TestEnvironmentCopyOnWrite(t *testing.T) {
	base := condreg.NewEnvironment()
	derived := base.WithProperty("mail.provider", "sendgrid").WithProfiles("prod")

	_, ok := base.Property("mail.provider")
	assert.False(t, ok, "base snapshot must stay untouched")
	assert.False(t, base.HasProfile("prod"))

	value, ok := derived.Property("mail.provider")
	assert.True(t, ok)
	assert.Equal(t, "sendgrid", value)
	assert.True(t, derived.HasProfile("prod"))
}

func TestEnvironmentBulkSetters(t *testing.T) {
	env := condreg.NewEnvironment().
		WithProperties(map[string]string{"a": "1", "b": "2"}).
		WithFlags(map[string]string{"HOME": "/root"})

	a, _ := env.Property("a")
	b, _ := env.Property("b")
	home, ok := env.Flag("HOME")
	assert.Equal(t, "1", a)
	assert.Equal(t, "2", b)
	assert.True(t, ok)
	assert.Equal(t, "/root", home)
}

func TestEnvironmentProfilesSorted(t *testing.T) {
	env := condreg.NewEnvironment().WithProfiles("prod", "dev", "metrics")
	assert.Equal(t, []string{"dev", "metrics", "prod"}, env.Profiles())
}

func TestEnvironmentClock(t *testing.T) {
	pinned := time.Date(2025, time.June, 7, 9, 30, 0, 0, time.UTC)
	env := condreg.NewEnvironment().WithClock(pinned)
	assert.Equal(t, pinned, env.Clock())

	assert.False(t, condreg.NewEnvironment().Clock().IsZero(),
		"fresh snapshots should carry the current time")
}
