package config

import (
	"net"
	"strings"
)

const (
	// DefaultHost keeps the console reachable from this machine only.
	DefaultHost = "127.0.0.1"
	DefaultPort = "8080"
)

// GetAddress returns the listen address. A bare port is bound to DefaultHost;
// an explicit ":port" listens on every interface.
func (s Settings) GetAddress() string {
	addr := s.Server.Address
	if addr == "" {
		return net.JoinHostPort(DefaultHost, DefaultPort)
	}
	if !strings.Contains(addr, ":") {
		return net.JoinHostPort(DefaultHost, addr)
	}
	return addr
}

func (s Settings) GetAppName() string {
	return s.AppName
}

func (s Settings) GetEnv() string {
	if s.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(s.Env)
}

func (s Settings) GetLogLevel() string {
	return s.LogLevel
}
