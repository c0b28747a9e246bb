package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Device is the small local configuration kept next to the database: the
// onboarding questionnaire answers and whether the welcome was shown.
type Device struct {
	Questionnaire  map[string]string
	HasSeenWelcome bool
}

// LoadDevice reads the device file at path (YAML, JSON or TOML by
// extension). A missing file yields an empty Device; the file only enriches
// a new profile and is never required.
func LoadDevice(path string) (Device, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("has_seen_welcome", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return Device{}, nil
		}
		return Device{}, err
	}

	answers := make(map[string]string)
	for k, val := range v.GetStringMapString("questionnaire") {
		if k = strings.TrimSpace(k); k != "" {
			answers[k] = val
		}
	}
	return Device{
		Questionnaire:  answers,
		HasSeenWelcome: v.GetBool("has_seen_welcome"),
	}, nil
}

// SaveDevice writes d to path, creating parent directories.
func SaveDevice(path string, d Device) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.Set("questionnaire", d.Questionnaire)
	v.Set("has_seen_welcome", d.HasSeenWelcome)
	return v.WriteConfigAs(path)
}
