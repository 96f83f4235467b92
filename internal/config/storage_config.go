package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	StorageDriverBolt   = "bolt"
	StorageDriverMemory = "memory"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetStoragePath() string
	GetStorageBucket() string
	GetStorageSecret() string
}

// Storage configures where the token record is persisted between restarts.
type Storage struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`
	// Secret, when set, seals persisted values at rest.
	Secret string `yaml:"secret"`
}

func (s Storage) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In(StorageDriverBolt, StorageDriverMemory)),
		validation.Field(&s.Path, validation.When(s.Driver == StorageDriverBolt, validation.Required)),
		validation.Field(&s.Bucket, validation.Required),
		validation.Field(&s.Secret, validation.When(s.Secret != "", validation.Length(16, 0))),
	)
}

func (s Settings) GetStorageDriver() string {
	return s.Storage.Driver
}

func (s Settings) GetStoragePath() string {
	return s.Storage.Path
}

func (s Settings) GetStorageBucket() string {
	return s.Storage.Bucket
}

func (s Settings) GetStorageSecret() string {
	return s.Storage.Secret
}
