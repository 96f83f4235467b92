package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type SessionConfig interface {
	GetRefreshMargin() time.Duration
	GetMinRefreshInterval() time.Duration
	GetRequiredRole() string
}

type Session struct {
	// RefreshMargin is how long before expiry the access token is renewed.
	RefreshMargin      time.Duration `yaml:"refresh_margin"`
	MinRefreshInterval time.Duration `yaml:"min_refresh_interval"`
	RequiredRole       string        `yaml:"required_role"`
}

func (s Session) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.RefreshMargin, validation.Required, validation.Min(time.Second)),
		validation.Field(&s.MinRefreshInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&s.RequiredRole, validation.Required),
	)
}

func (s Settings) GetRefreshMargin() time.Duration {
	return s.Session.RefreshMargin
}

func (s Settings) GetMinRefreshInterval() time.Duration {
	return s.Session.MinRefreshInterval
}

func (s Settings) GetRequiredRole() string {
	return s.Session.RequiredRole
}
