// Package condreg provides a predicate-gated component registry: multiple
// implementations of a capability are registered against conditions over an
// environment snapshot, and resolution picks exactly one winner per key,
// instantiates it once, and caches it.
//
// A typical composition root registers a default implementation plus any
// number of conditionally-gated alternatives, freezes the registry, and
// resolves capabilities on demand:
//
//	reg := condreg.NewRegistry()
//	reg.MustRegister("email", nil, newSMTP, condreg.AsDefault())
//	reg.MustRegister("email",
//		condreg.PropertyEquals("mail.provider", "sendgrid", "smtp"),
//		newSendGrid)
//	reg.Freeze()
//
//	mailer, err := condreg.ResolveAs[Mailer](reg, "email", env)
//
// Conditions are composable with And, Or and Not, and never abort
// resolution: an evaluation error counts as a non-match so the default
// wins over a crash.
package condreg
