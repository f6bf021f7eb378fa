package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	backendURLVar = "BACKEND_URL"
	apiTimeoutVar = "API_TIMEOUT"

	defaultAPITimeout = 10 * time.Second
)

type BackendConfig interface {
	GetBackendURL() string
	GetAPITimeout() time.Duration
}

type Backend struct {
	v *viper.Viper
}

var _ BackendConfig = Backend{}

// GetBackendURL returns the backend root without a trailing slash; the /api prefix is added by the client.
func (b Backend) GetBackendURL() string {
	return strings.TrimRight(b.v.GetString(backendURLVar), "/")
}

func (b Backend) GetAPITimeout() time.Duration {
	timeout := b.v.GetDuration(apiTimeoutVar)
	if timeout <= 0 {
		return defaultAPITimeout
	}
	return timeout
}
