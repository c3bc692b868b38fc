package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                           string         `json:"endpoint_addr"`
	DatabaseDSN                            string         `json:"database_dsn"`
	SecretKey                              string         `json:"secret_key"`
	AccessTokenValidityDuration            timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration           timex.Duration `json:"refresh_token_validity_duration"`
	PasswordResetTokenValidityDuration     timex.Duration `json:"password_reset_token_validity_duration"`
	EmailVerificationTokenValidityDuration timex.Duration `json:"email_verification_token_validity_duration"`
	BcryptCost                             int            `json:"bcrypt_cost"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path is taken from the -c or -config command-line flags.
// If neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults, environment
// variables, and command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.PasswordResetTokenValidityDuration = time.Duration(c.PasswordResetTokenValidityDuration.Duration)
	config.EmailVerificationTokenValidityDuration = time.Duration(c.EmailVerificationTokenValidityDuration.Duration)
	config.BcryptCost = c.BcryptCost
}
