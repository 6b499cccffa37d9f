package condreg

import (
	"errors"
	"strings"
	"time"
)

// Condition is a pure predicate over an Environment snapshot deciding a
// registration's eligibility. Conditions must not have side effects; a
// returned error degrades to a non-match during evaluation rather than
// aborting resolution.
type Condition func(env *Environment) (bool, error)

// Evaluate runs cond against env. A nil condition, an evaluation error, or
// a panic inside cond all evaluate to false, so resolution falls back to
// the default registration instead of failing.
func Evaluate(cond Condition, env *Environment) (matched bool) {
	if cond == nil || env == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	ok, err := cond(env)
	if err != nil {
		return false
	}
	return ok
}

// Always matches every environment.
func Always() Condition {
	return func(*Environment) (bool, error) { return true, nil }
}

// Never matches no environment.
func Never() Condition {
	return func(*Environment) (bool, error) { return false, nil }
}

// PropertyEquals matches when the named property equals expected,
// case-insensitively. When the property is absent, fallback is compared
// instead, so a registration can match the documented default value of an
// unset property.
func PropertyEquals(name, expected, fallback string) Condition {
	return func(env *Environment) (bool, error) {
		value, ok := env.Property(name)
		if !ok {
			value = fallback
		}
		return strings.EqualFold(value, expected), nil
	}
}

// EnvVarTruthy matches when the named flag is present and equals "true",
// case-insensitively.
func EnvVarTruthy(name string) Condition {
	return func(env *Environment) (bool, error) {
		value, ok := env.Flag(name)
		return ok && strings.EqualFold(value, "true"), nil
	}
}

// ProfileActive matches when the named profile is in the environment's
// active set.
func ProfileActive(name string) Condition {
	return func(env *Environment) (bool, error) {
		return env.HasProfile(name), nil
	}
}

// TimeWindow matches when pred holds for the environment's clock. A zero
// clock cannot be evaluated and reports an error, which Evaluate degrades
// to a non-match.
func TimeWindow(pred func(time.Time) bool) Condition {
	return func(env *Environment) (bool, error) {
		if pred == nil {
			return false, errors.New("condreg: nil time predicate")
		}
		clock := env.Clock()
		if clock.IsZero() {
			return false, errors.New("condreg: environment clock not set")
		}
		return pred(clock), nil
	}
}

// Weekend matches when the environment's clock falls on a Saturday or
// Sunday.
func Weekend() Condition {
	return TimeWindow(func(t time.Time) bool {
		day := t.Weekday()
		return day == time.Saturday || day == time.Sunday
	})
}

// And matches when every operand matches. Evaluation short-circuits on the
// first non-match; an operand error propagates so the composite degrades
// to a non-match at the evaluation boundary.
func And(conds ...Condition) Condition {
	return func(env *Environment) (bool, error) {
		for _, cond := range conds {
			ok, err := cond(env)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

// Or matches when any operand matches, short-circuiting on the first
// match.
func Or(conds ...Condition) Condition {
	return func(env *Environment) (bool, error) {
		for _, cond := range conds {
			ok, err := cond(env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Not inverts cond. An error from cond propagates unchanged, so a failing
// operand never turns into a match through negation.
func Not(cond Condition) Condition {
	return func(env *Environment) (bool, error) {
		ok, err := cond(env)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}
