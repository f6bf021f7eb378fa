package config

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	BackendConfig
	AuthConfig
	SessionConfig
	NotificationConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Backend
	Auth
	Session
	Notification
}

// New resolves configuration from the environment and, when CONFIG_FILE is set, a YAML file.
func New() Config {
	v := viper.New()
	v.AutomaticEnv()
	if file := v.GetString(configFileVar); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Config file not loaded, using environment only")
		}
	}
	return NewFromViper(v)
}

// NewFromViper builds a Config over an existing viper instance, applying defaults.
func NewFromViper(v *viper.Viper) Config {
	setDefaults(v)
	return mainConfig{
		EnvVars:      EnvVars{v: v},
		Backend:      Backend{v: v},
		Auth:         Auth{v: v},
		Session:      Session{v: v},
		Notification: Notification{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(portEnvVar, "8080")
	v.SetDefault(appNameVar, "Stima Sacco Collections")
	v.SetDefault(envVar, "DEV")
	v.SetDefault(logLevelVar, "info")

	// REACT_APP_BACKEND_URL is the legacy name and is still honoured.
	_ = v.BindEnv(backendURLVar, "BACKEND_URL", "REACT_APP_BACKEND_URL")
	v.SetDefault(backendURLVar, "http://localhost:8001")
	v.SetDefault(apiTimeoutVar, defaultAPITimeout)

	v.SetDefault(authProviderVar, AuthProviderDemo)
	v.SetDefault(tokenIssuerVar, "npl-portal")
	v.SetDefault(tokenTTLVar, defaultTokenTTL)
	if v.GetString(tokenSecretVar) == "" {
		v.SetDefault(tokenSecretVar, randomSecret())
	}

	v.SetDefault(sessionStoreVar, SessionStoreMemory)
	v.SetDefault(sessionDirVar, "./data/sessions")
	v.SetDefault(sessionMaxAgeVar, defaultSessionMaxAge)
	v.SetDefault(cookieSecureVar, false)

	v.SetDefault(pollIntervalVar, defaultPollInterval)
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
