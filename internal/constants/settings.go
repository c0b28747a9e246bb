package constants

const (
	// General Settings
	SettingTimezone           = "timezone"
	SettingProbeHosts         = "probe_hosts"
	SettingProbeTimeoutMs     = "probe_timeout_ms"
	SettingNotifyUnlocks      = "notify_unlocks"
	SettingUnlockToastSeconds = "unlock_toast_seconds"

	// Default Settings Values
	DefaultTimezone           = "Local" // Use system local timezone by default
	DefaultProbeHosts         = "1.1.1.1:443,8.8.8.8:53"
	DefaultProbeTimeoutMs     = 1500
	DefaultNotifyUnlocks      = true
	DefaultUnlockToastSeconds = 3
)
