package usecase

import (
	"log/slog"

	"github.com/alexmorbo/bttn-relay/domain/token"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

// HandleCallUseCase answers the telephony callback of a placed call with the
// phrase configured on the action that placed it.
type HandleCallUseCase struct {
	registry *Registry
	codec    *token.Codec
	logger   *slog.Logger
}

func NewHandleCallUseCase(registry *Registry, codec *token.Codec, log *slog.Logger) *HandleCallUseCase {
	return &HandleCallUseCase{
		registry: registry,
		codec:    codec,
		logger:   log.With("component", "call"),
	}
}

// Execute returns the text to speak, empty when the action sets none.
func (uc *HandleCallUseCase) Execute(tok string) (string, error) {
	name, err := uc.codec.Verify(tok, token.ActionCall)
	if err != nil {
		return "", err
	}

	b, err := uc.registry.Load(name)
	if err != nil {
		return "", err
	}

	b.Lock()
	_, phone := b.CurrentAction()
	b.Unlock()

	var say string
	if phone.Call != nil {
		say = phone.Call.Say
	}

	uc.logger.Info("Inbound call answered",
		logger.Event("call_answered",
			logger.Button(name),
			slog.Bool("custom_say", say != ""),
		),
	)
	return say, nil
}
