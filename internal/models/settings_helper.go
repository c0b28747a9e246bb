package models

import (
	"fmt"
	"strings"

	"github.com/julianstephens/moodlit/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingProbeHosts:
			settings.ProbeHosts = splitHosts(value)
		case constants.SettingProbeTimeoutMs:
			if _, err := fmt.Sscanf(value, "%d", &settings.ProbeTimeoutMs); err != nil {
				return Settings{}, fmt.Errorf("parsing probe_timeout_ms: %w", err)
			}
		case constants.SettingNotifyUnlocks:
			settings.NotifyUnlocks = value == "true"
		case constants.SettingUnlockToastSeconds:
			if _, err := fmt.Sscanf(value, "%d", &settings.UnlockToastSeconds); err != nil {
				return Settings{}, fmt.Errorf("parsing unlock_toast_seconds: %w", err)
			}
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:           settings.Timezone,
		constants.SettingProbeHosts:         strings.Join(settings.ProbeHosts, ","),
		constants.SettingProbeTimeoutMs:     fmt.Sprintf("%d", settings.ProbeTimeoutMs),
		constants.SettingNotifyUnlocks:      fmt.Sprintf("%v", settings.NotifyUnlocks),
		constants.SettingUnlockToastSeconds: fmt.Sprintf("%d", settings.UnlockToastSeconds),
	}
}

// DefaultSettings returns the settings written by init.
func DefaultSettings() Settings {
	return Settings{
		Timezone:           constants.DefaultTimezone,
		ProbeHosts:         splitHosts(constants.DefaultProbeHosts),
		ProbeTimeoutMs:     constants.DefaultProbeTimeoutMs,
		NotifyUnlocks:      constants.DefaultNotifyUnlocks,
		UnlockToastSeconds: constants.DefaultUnlockToastSeconds,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if len(settings.ProbeHosts) == 0 {
		settings.ProbeHosts = splitHosts(constants.DefaultProbeHosts)
	}
	if settings.ProbeTimeoutMs == 0 {
		settings.ProbeTimeoutMs = constants.DefaultProbeTimeoutMs
	}
	if settings.UnlockToastSeconds == 0 {
		settings.UnlockToastSeconds = constants.DefaultUnlockToastSeconds
	}
}

func splitHosts(value string) []string {
	var hosts []string
	for _, h := range strings.Split(value, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
