package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetJWKSURL() string
}

// API describes the catalog backend the console talks to.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// JWKSURL enables signature verification of access tokens when set.
	JWKSURL string `yaml:"jwks_url"`
}

func (a API) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BaseURL, validation.Required, is.URL),
		validation.Field(&a.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&a.JWKSURL, is.URL),
	)
}

func (s Settings) GetAPIBaseURL() string {
	return s.API.BaseURL
}

func (s Settings) GetAPITimeout() time.Duration {
	return s.API.Timeout
}

func (s Settings) GetJWKSURL() string {
	return s.API.JWKSURL
}
