package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	pollIntervalVar = "NOTIFICATION_POLL_INTERVAL"

	defaultPollInterval = 30 * time.Second
)

type NotificationConfig interface {
	GetNotificationPollInterval() time.Duration
}

type Notification struct {
	v *viper.Viper
}

var _ NotificationConfig = Notification{}

func (n Notification) GetNotificationPollInterval() time.Duration {
	interval := n.v.GetDuration(pollIntervalVar)
	if interval <= 0 {
		return defaultPollInterval
	}
	return interval
}
