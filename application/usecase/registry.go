package usecase

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/alexmorbo/bttn-relay/application/port"
	"github.com/alexmorbo/bttn-relay/domain/button"
	"github.com/alexmorbo/bttn-relay/domain/token"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

// Registry owns every loaded button. A button is built once and the same
// instance is returned until it is evicted.
type Registry struct {
	mu      sync.RWMutex
	buttons map[string]*button.Button

	// serialises token file rewrites
	writeMu sync.Mutex

	loader port.ButtonLoader
	codec  *token.Codec
	tokens port.TokenWriter
	logger *slog.Logger
}

func NewRegistry(loader port.ButtonLoader, codec *token.Codec, tokens port.TokenWriter, log *slog.Logger) *Registry {
	return &Registry{
		buttons: make(map[string]*button.Button),
		loader:  loader,
		codec:   codec,
		tokens:  tokens,
		logger:  log.With("component", "registry"),
	}
}

func (r *Registry) Load(name string) (*button.Button, error) {
	r.mu.RLock()
	b, ok := r.buttons[name]
	r.mu.RUnlock()
	if ok {
		return b, nil
	}

	validName, err := button.NewName(name)
	if err != nil {
		return nil, fmt.Errorf("load button: %w", err)
	}

	r.mu.Lock()
	if b, ok := r.buttons[name]; ok {
		r.mu.Unlock()
		return b, nil
	}

	cfg := r.loader.LoadButton(name)
	r.warnIncomplete(name, cfg)

	b = button.New(validName, cfg)
	r.buttons[name] = b
	r.mu.Unlock()

	buttonsLoadedCounter.Inc()
	r.logger.Info("Button loaded",
		logger.Event("button_loaded",
			logger.Button(name),
			slog.Int("actions", len(cfg.Actions)),
			slog.String("room", cfg.Room),
		),
	)

	r.writeTokens()
	return b, nil
}

// LoadAll loads every button that has a file in the buttons directory.
// Buttons that are already loaded keep their state.
func (r *Registry) LoadAll() (map[string]*button.Button, error) {
	names, err := r.loader.ListButtons()
	if err != nil {
		return nil, fmt.Errorf("list buttons: %w", err)
	}

	for _, name := range names {
		if _, err := r.Load(name); err != nil {
			r.logger.Warn("Skipping button file",
				logger.Event("button_skipped",
					logger.Button(name),
					logger.Err(err),
				),
			)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*button.Button, len(r.buttons))
	for name, b := range r.buttons {
		out[name] = b
	}
	return out, nil
}

// Evict drops a button so that the next Load reads its configuration again.
func (r *Registry) Evict(name string) {
	r.mu.Lock()
	_, ok := r.buttons[name]
	delete(r.buttons, name)
	r.mu.Unlock()

	if ok {
		r.logger.Info("Button evicted",
			logger.Event("button_evicted", logger.Button(name)),
		)
	}
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) Tokens() map[string]string {
	return r.codec.Tokens(r.Names())
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.buttons))
	for name := range r.buttons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) writeTokens() {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.tokens.WriteTokens(r.Tokens()); err != nil {
		r.logger.Error("Failed to write token file",
			logger.Event("tokens_write_failed", logger.Err(err)),
		)
	}
}

func (r *Registry) warnIncomplete(name string, cfg button.Config) {
	var missing []string
	if len(cfg.Actions) == 0 {
		missing = append(missing, "actions")
	}
	if cfg.Room == "" {
		missing = append(missing, "room")
	}
	if len(cfg.Moderators) == 0 {
		missing = append(missing, "moderators")
	}
	for _, field := range missing {
		r.logger.Warn("Missing button configuration",
			logger.Event("button_config_missing",
				logger.Button(name),
				slog.String("field", field),
			),
		)
	}
}
