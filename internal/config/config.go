package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	StorageConfig
	CorsConfig
}

type EnvConfig interface {
	GetAddress() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// Settings is the file/env representation of the console configuration.
type Settings struct {
	AppName  string  `yaml:"app_name"`
	Env      string  `yaml:"env"`
	LogLevel string  `yaml:"log_level"`
	Server   Server  `yaml:"server"`
	API      API     `yaml:"api"`
	Session  Session `yaml:"session"`
	Storage  Storage `yaml:"storage"`
	Cors     Cors    `yaml:"cors"`
}

var _ Config = Settings{}

func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.AppName, validation.Required),
		validation.Field(&s.Env, validation.Required),
		validation.Field(&s.LogLevel, validation.Required, validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&s.Server, validation.Required),
		validation.Field(&s.API, validation.Required),
		validation.Field(&s.Session, validation.Required),
		validation.Field(&s.Storage, validation.Required),
	)
}

// Server configures the console listener.
type Server struct {
	// Address is a port or host:port. A bare port listens on loopback only.
	Address string `yaml:"address"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, validation.By(listenAddress)),
	)
}

func listenAddress(value interface{}) error {
	addr, _ := value.(string)
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("must be a port or host:port")
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return errors.New("must be a valid port number")
	}
	return nil
}
