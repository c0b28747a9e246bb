package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := load(ctx)
	if err != nil {
		return err
	}
	ctx.Println("Current Settings:")
	ctx.Printf("  Timezone:              %s\n", settings.Timezone)
	ctx.Println("\nConnectivity:")
	ctx.Printf("  Probe Hosts:           %s\n", strings.Join(settings.ProbeHosts, ", "))
	ctx.Printf("  Probe Timeout:         %d ms\n", settings.ProbeTimeoutMs)
	ctx.Println("\nAchievements:")
	ctx.Printf("  Notify Unlocks:        %v\n", settings.NotifyUnlocks)
	ctx.Printf("  Unlock Toast:          %d s\n", settings.UnlockToastSeconds)
	return nil
}

func load(ctx *cli.Context) (models.Settings, error) {
	settings, err := ctx.Store.GetSettings(context.Background())
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

type SettingsSetCmd struct {
	Timezone           *string  `help:"IANA timezone used to bucket entries into days, or 'Local'."`
	ProbeHosts         []string `help:"host:port pairs dialed to detect connectivity." sep:","`
	ProbeTimeoutMs     *int     `help:"Dial timeout for each connectivity probe, in milliseconds."`
	NotifyUnlocks      *bool    `help:"Forward achievement unlocks to the tray app."`
	UnlockToastSeconds *int     `help:"How long an unlock stays highlighted, in seconds."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	settings, err := load(ctx)
	if err != nil {
		return err
	}

	updated := false
	if c.Timezone != nil {
		tz := strings.TrimSpace(*c.Timezone)
		if !utils.ValidateTimezone(tz) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = tz
		updated = true
	}
	if c.ProbeHosts != nil {
		hosts := make([]string, 0, len(c.ProbeHosts))
		for _, h := range c.ProbeHosts {
			if h = strings.TrimSpace(h); h != "" {
				hosts = append(hosts, h)
			}
		}
		settings.ProbeHosts = hosts
		updated = true
	}
	if c.ProbeTimeoutMs != nil {
		if *c.ProbeTimeoutMs <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %d", *c.ProbeTimeoutMs)
		}
		settings.ProbeTimeoutMs = *c.ProbeTimeoutMs
		updated = true
	}
	if c.NotifyUnlocks != nil {
		settings.NotifyUnlocks = *c.NotifyUnlocks
		updated = true
	}
	if c.UnlockToastSeconds != nil {
		if *c.UnlockToastSeconds <= 0 {
			return fmt.Errorf("unlock toast must be positive, got %d", *c.UnlockToastSeconds)
		}
		settings.UnlockToastSeconds = *c.UnlockToastSeconds
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use 'moodlit settings show' to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Store.SaveSettings(context.Background(), settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
