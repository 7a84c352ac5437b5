// Package config loads the environment configuration named in spec §6
// via viper, following the teacher's viper-bound environment config
// style.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full set of environment configuration spec §6 names.
type Config struct {
	ListenOn     string
	JWTSecret    string
	NATSEndpoint string

	ObjectStorageEndpoint  string
	ObjectStorageBucket    string
	ObjectStorageRegion    string
	ObjectStorageAccessKey string
	ObjectStorageSecretKey string

	DatabaseUsername string
	DatabasePassword string
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string

	Debug bool
}

// Load reads configuration from the process environment. Every field is
// required except Debug (defaults to false); a missing required field
// fails fast rather than letting a zero-value secret reach a
// collaborator.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DEBUG", false)

	required := []string{
		"LISTEN_ON", "JWT_SECRET", "NATS_ENDPOINT",
		"OBJECT_STORAGE_ENDPOINT", "OBJECT_STORAGE_BUCKET", "OBJECT_STORAGE_REGION",
		"OBJECT_STORAGE_ACCESS_KEY", "OBJECT_STORAGE_SECRET_KEY",
		"DATABASE_USERNAME", "DATABASE_PASSWORD", "DATABASE_HOST", "DATABASE_PORT", "DATABASE_NAME",
	}
	for _, key := range required {
		if v.GetString(key) == "" {
			return Config{}, fmt.Errorf("config: missing required environment variable %s", key)
		}
	}

	return Config{
		ListenOn:     v.GetString("LISTEN_ON"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		NATSEndpoint: v.GetString("NATS_ENDPOINT"),

		ObjectStorageEndpoint:  v.GetString("OBJECT_STORAGE_ENDPOINT"),
		ObjectStorageBucket:    v.GetString("OBJECT_STORAGE_BUCKET"),
		ObjectStorageRegion:    v.GetString("OBJECT_STORAGE_REGION"),
		ObjectStorageAccessKey: v.GetString("OBJECT_STORAGE_ACCESS_KEY"),
		ObjectStorageSecretKey: v.GetString("OBJECT_STORAGE_SECRET_KEY"),

		DatabaseUsername: v.GetString("DATABASE_USERNAME"),
		DatabasePassword: v.GetString("DATABASE_PASSWORD"),
		DatabaseHost:     v.GetString("DATABASE_HOST"),
		DatabasePort:     v.GetString("DATABASE_PORT"),
		DatabaseName:     v.GetString("DATABASE_NAME"),

		Debug: v.GetBool("DEBUG"),
	}, nil
}

// DatabaseDSN builds the pgx connection string from the Database* fields.
func (c Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DatabaseUsername, c.DatabasePassword, c.DatabaseHost, c.DatabasePort, c.DatabaseName)
}
