package models

// Settings represents application-wide settings
type Settings struct {
	Timezone           string   `json:"timezone"`             // IANA timezone name, or "Local" for the system timezone
	ProbeHosts         []string `json:"probe_hosts"`          // host:port pairs dialed by the connectivity monitor
	ProbeTimeoutMs     int      `json:"probe_timeout_ms"`     // dial timeout per probe
	NotifyUnlocks      bool     `json:"notify_unlocks"`       // whether unlocks are forwarded to the tray app
	UnlockToastSeconds int      `json:"unlock_toast_seconds"` // lifetime of a "just unlocked" token
}
