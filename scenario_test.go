package condreg_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/centraunit/condreg"
	"github.com/centraunit/condreg/mock"
)

// ScenarioTestSuite exercises the provider-switching use cases end to end:
// an email capability whose backend follows the mail.provider property, and
// a service only available under a given profile.
type ScenarioTestSuite struct {
	suite.Suite
	registry *condreg.Registry
	smtp     *mock.SMTPMailer
	sendgrid *mock.SendGridMailer
}

func (s *ScenarioTestSuite) SetupTest() {
	s.registry = condreg.NewRegistry()
	s.smtp = &mock.SMTPMailer{Host: "mail.internal"}
	s.sendgrid = &mock.SendGridMailer{APIKey: "sg-test"}

	s.registry.MustRegister("email", nil,
		func() (any, error) { return s.smtp, nil },
		condreg.AsDefault(), condreg.WithName("smtp"))
	s.registry.MustRegister("email",
		condreg.PropertyEquals("mail.provider", "sendgrid", "smtp"),
		func() (any, error) { return s.sendgrid, nil },
		condreg.WithName("sendgrid"))
	s.registry.Freeze()
}

func (s *ScenarioTestSuite) TestSMTPByDefault() {
	// No mail.provider property set: the fallback value "smtp" applies.
	mailer, err := condreg.ResolveAs[mock.Mailer](s.registry, "email", condreg.NewEnvironment())
	s.NoError(err)
	s.Equal("smtp", mailer.Provider())
}

func (s *ScenarioTestSuite) TestSendGridWhenConfigured() {
	env := condreg.NewEnvironment().WithProperty("mail.provider", "sendgrid")

	mailer, err := condreg.ResolveAs[mock.Mailer](s.registry, "email", env)
	s.NoError(err)
	s.Equal("sendgrid", mailer.Provider())
}

func (s *ScenarioTestSuite) TestProviderValueIsCaseInsensitive() {
	env := condreg.NewEnvironment().WithProperty("mail.provider", "SendGrid")

	mailer, err := condreg.ResolveAs[mock.Mailer](s.registry, "email", env)
	s.NoError(err)
	s.Equal("sendgrid", mailer.Provider())
}

func (s *ScenarioTestSuite) TestProfileGatedService() {
	registry := condreg.NewRegistry()
	prodService := &mock.SMTPMailer{Host: "prod-only"}
	registry.MustRegister("reporting",
		condreg.ProfileActive("prod"),
		func() (any, error) { return prodService, nil })

	// dev profile: the capability is simply absent.
	_, err := registry.Resolve("reporting", condreg.NewEnvironment().WithProfiles("dev"))
	var noMatch *condreg.NoMatchingComponentError
	s.True(errors.As(err, &noMatch))

	registry.Reset("reporting")

	instance, err := registry.Resolve("reporting", condreg.NewEnvironment().WithProfiles("prod"))
	s.NoError(err)
	s.Same(prodService, instance)
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioTestSuite))
}
