// Package envconf builds condreg.Environment snapshots from application
// configuration: properties come from a viper-managed config file, flags
// from the process environment, and active profiles from the
// "profiles.active" property (comma-separated). Snapshots are cached with
// a TTL so hot resolution paths do not re-read configuration.
package envconf

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/viper"

	"github.com/centraunit/condreg"
)

const (
	// ProfilesKey is the property listing active profiles, comma-separated.
	ProfilesKey = "profiles.active"

	// DefaultTTL bounds how long a cached snapshot is served before the
	// configuration sources are consulted again.
	DefaultTTL = 30 * time.Second

	defaultCleanupInterval = 5 * time.Minute
	snapshotKey            = "snapshot"
)

// Supplier produces condreg.Environment snapshots from a config file and
// the process environment. It is safe for concurrent use: the mutex keeps
// watcher-driven reloads from mutating the viper instance while a snapshot
// is being built.
type Supplier struct {
	mu    sync.RWMutex
	v     *viper.Viper
	cache *gocache.Cache
	clock func() time.Time
	path  string
}

// Option configures a Supplier.
type Option func(*Supplier)

// WithClock overrides the snapshot clock source. Useful for testing
// time-gated conditions.
func WithClock(fn func() time.Time) Option {
	return func(s *Supplier) { s.clock = fn }
}

// WithTTL overrides how long snapshots are cached.
func WithTTL(ttl time.Duration) Option {
	return func(s *Supplier) { s.cache = gocache.New(ttl, defaultCleanupInterval) }
}

// New reads the config file at path and returns a Supplier over it.
func New(path string, opts ...Option) (*Supplier, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("envconf: read config %s: %w", path, err)
	}

	s := &Supplier{
		v:     v,
		cache: gocache.New(DefaultTTL, defaultCleanupInterval),
		clock: time.Now,
		path:  path,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the config file the supplier reads from.
func (s *Supplier) Path() string {
	return s.path
}

// Snapshot returns the current environment snapshot, building a fresh one
// when the cache is empty or expired. Successive calls within the TTL
// return the identical snapshot.
func (s *Supplier) Snapshot() *condreg.Environment {
	if cached, found := s.cache.Get(snapshotKey); found {
		if env, ok := cached.(*condreg.Environment); ok {
			return env
		}
	}

	env := s.build()
	s.cache.Set(snapshotKey, env, gocache.DefaultExpiration)
	return env
}

// Invalidate drops the cached snapshot so the next Snapshot call rebuilds
// from the configuration sources.
func (s *Supplier) Invalidate() {
	s.cache.Delete(snapshotKey)
}

// reload re-reads the config file, picking up external edits.
func (s *Supplier) reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("envconf: reload config %s: %w", s.path, err)
	}
	return nil
}

func (s *Supplier) build() *condreg.Environment {
	s.mu.RLock()
	properties := make(map[string]string)
	for _, key := range s.v.AllKeys() {
		properties[key] = s.v.GetString(key)
	}
	active := s.v.GetString(ProfilesKey)
	s.mu.RUnlock()

	flags := make(map[string]string, len(os.Environ()))
	for _, kv := range os.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		flags[name] = value
	}

	env := condreg.NewEnvironment().
		WithClock(s.clock()).
		WithProperties(properties).
		WithFlags(flags)

	if active != "" {
		for _, profile := range strings.Split(active, ",") {
			if profile = strings.TrimSpace(profile); profile != "" {
				env = env.WithProfiles(profile)
			}
		}
	}
	return env
}
