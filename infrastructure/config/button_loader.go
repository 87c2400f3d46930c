package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexmorbo/bttn-relay/domain/button"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

const buttonFileExtension = "yaml"

// ButtonLoader builds button configurations from generic settings plus the
// optional buttons/<name>.yaml override.
type ButtonLoader struct {
	settings *Settings
	dir      string
	logger   *slog.Logger
}

func NewButtonLoader(settings *Settings, dir string, log *slog.Logger) *ButtonLoader {
	return &ButtonLoader{
		settings: settings,
		dir:      dir,
		logger:   log.With("component", "button_loader"),
	}
}

func (l *ButtonLoader) LoadButton(name string) button.Config {
	merged := *l.settings
	path := filepath.Join(l.dir, name+"."+buttonFileExtension)

	override, err := LoadOverride(path)
	switch {
	case err == nil:
		merged = MergeSettings(*l.settings, *override)
	case errors.Is(err, os.ErrNotExist):
		l.logger.Info("No button file, using generic settings",
			logger.Event("button_file_missing",
				logger.Button(name),
				slog.String("path", path),
			),
		)
	default:
		l.logger.Error("Failed to load button file, using generic settings",
			logger.Event("button_file_invalid",
				logger.Button(name),
				slog.String("path", path),
				logger.Err(err),
			),
		)
	}

	cfg, err := merged.ButtonConfig()
	if err != nil {
		l.logger.Error("Invalid button configuration, idle reset disabled",
			logger.Event("button_config_invalid",
				logger.Button(name),
				logger.Err(err),
			),
		)
		merged.IdleReset = ""
		cfg, _ = merged.ButtonConfig()
	}
	return cfg
}

// ListButtons returns the names of all override files in the buttons
// directory. A missing directory means no buttons.
func (l *ButtonLoader) ListButtons() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ext, found := strings.Cut(entry.Name(), ".")
		if !found || ext != buttonFileExtension || name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
