package condreg

import (
	"maps"
	"sort"
	"time"
)

// Environment is an immutable snapshot of the external signals a Condition
// may inspect: named string properties, environment-variable flags, the set
// of active profiles, and a clock value.
//
// Snapshots are built by the caller (see the envconf package for a
// config-backed supplier) and passed into Resolve. All With* methods are
// copy-on-write and return a new snapshot; the registry never mutates one.
type Environment struct {
	properties map[string]string
	flags      map[string]string
	profiles   map[string]struct{}
	clock      time.Time
}

// NewEnvironment returns an empty snapshot whose clock is the current time.
func NewEnvironment() *Environment {
	return &Environment{
		properties: map[string]string{},
		flags:      map[string]string{},
		profiles:   map[string]struct{}{},
		clock:      time.Now(),
	}
}

func (e *Environment) clone() *Environment {
	return &Environment{
		properties: maps.Clone(e.properties),
		flags:      maps.Clone(e.flags),
		profiles:   maps.Clone(e.profiles),
		clock:      e.clock,
	}
}

// WithProperty returns a new snapshot with the named property set.
func (e *Environment) WithProperty(name, value string) *Environment {
	next := e.clone()
	next.properties[name] = value
	return next
}

// WithProperties returns a new snapshot with every entry of props set.
func (e *Environment) WithProperties(props map[string]string) *Environment {
	next := e.clone()
	maps.Copy(next.properties, props)
	return next
}

// WithFlag returns a new snapshot with the named flag set.
func (e *Environment) WithFlag(name, value string) *Environment {
	next := e.clone()
	next.flags[name] = value
	return next
}

// WithFlags returns a new snapshot with every entry of flags set.
func (e *Environment) WithFlags(flags map[string]string) *Environment {
	next := e.clone()
	maps.Copy(next.flags, flags)
	return next
}

// WithProfiles returns a new snapshot with the given profiles added to the
// active set.
func (e *Environment) WithProfiles(names ...string) *Environment {
	next := e.clone()
	for _, name := range names {
		next.profiles[name] = struct{}{}
	}
	return next
}

// WithClock returns a new snapshot with the clock pinned to t.
func (e *Environment) WithClock(t time.Time) *Environment {
	next := e.clone()
	next.clock = t
	return next
}

// Property reports the named property and whether it is present.
func (e *Environment) Property(name string) (string, bool) {
	value, ok := e.properties[name]
	return value, ok
}

// Flag reports the named flag and whether it is present.
func (e *Environment) Flag(name string) (string, bool) {
	value, ok := e.flags[name]
	return value, ok
}

// HasProfile reports whether the named profile is active.
func (e *Environment) HasProfile(name string) bool {
	_, ok := e.profiles[name]
	return ok
}

// Profiles returns the active profile names in sorted order.
func (e *Environment) Profiles() []string {
	names := make([]string, 0, len(e.profiles))
	for name := range e.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clock returns the snapshot's clock value.
func (e *Environment) Clock() time.Time {
	return e.clock
}
