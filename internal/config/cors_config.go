package config

import "strings"

type Cors struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods string   `yaml:"allowed_methods"`
	AllowedHeaders string   `yaml:"allowed_headers"`
}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (s Settings) GetAllowedOrigins() AllowedOrigins {
	origins := make(AllowedOrigins, len(s.Cors.AllowedOrigins))
	for _, o := range s.Cors.AllowedOrigins {
		origins[o] = nullValue{}
	}
	return origins
}

func (s Settings) GetAllowedMethods() string {
	if s.Cors.AllowedMethods == "" {
		return "GET, OPTIONS"
	}
	return s.Cors.AllowedMethods
}

func (s Settings) GetAllowedHeaders() string {
	if s.Cors.AllowedHeaders == "" {
		return "Content-Type, Authorization"
	}
	return s.Cors.AllowedHeaders
}
