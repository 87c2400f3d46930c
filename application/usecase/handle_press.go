package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexmorbo/bttn-relay/application/port"
	"github.com/alexmorbo/bttn-relay/domain/remote"
	"github.com/alexmorbo/bttn-relay/domain/token"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

var ErrPressThrottled = errors.New("press throttled")

type PressResult struct {
	Button string
	Count  int
}

type HandlePressUseCase struct {
	registry   *Registry
	rooms      *RoomManager
	dispatcher *Dispatcher
	codec      *token.Codec
	limiter    port.PressLimiter
	now        func() time.Time
	logger     *slog.Logger
}

func NewHandlePressUseCase(
	registry *Registry,
	rooms *RoomManager,
	dispatcher *Dispatcher,
	codec *token.Codec,
	limiter port.PressLimiter,
	log *slog.Logger,
) *HandlePressUseCase {
	return &HandlePressUseCase{
		registry:   registry,
		rooms:      rooms,
		dispatcher: dispatcher,
		codec:      codec,
		limiter:    limiter,
		now:        time.Now,
		logger:     log.With("component", "press"),
	}
}

// Execute handles one press. The counter advances before anything is sent,
// so a press whose dispatch fails still consumes its action.
func (uc *HandlePressUseCase) Execute(ctx context.Context, tok string) (*PressResult, error) {
	name, err := uc.codec.Verify(tok, "")
	if err != nil {
		return nil, err
	}
	if name == token.IndexLabel {
		return nil, fmt.Errorf("%w: index token used as button", token.ErrInvalidToken)
	}

	ctx = logger.WithButton(ctx, name)
	log := logger.FromContext(ctx, uc.logger)

	b, err := uc.registry.Load(name)
	if err != nil {
		return nil, err
	}

	if !uc.limiter.Allow(name) {
		pressThrottledCounter.Inc()
		log.Warn("Press throttled", logger.Event("press_throttled"))
		return nil, ErrPressThrottled
	}

	b.Lock()
	defer b.Unlock()

	if _, err := uc.rooms.ResolveRoom(ctx, b); err != nil {
		return nil, fmt.Errorf("resolve room: %w", err)
	}

	now := uc.now()
	update, phone := b.NextAction(now)
	count := b.Advance(now)
	buttonPressesCounter(name).Inc()

	log.Info("Button pressed",
		logger.Event("button_pressed",
			slog.Int("count", count),
			slog.Bool("sms", phone.SMS != nil),
			slog.Bool("call", phone.Call != nil),
		),
	)

	if phone.SMS != nil {
		if err := uc.dispatcher.SendSMS(ctx, b, *phone.SMS); err != nil {
			log.Warn("SMS not delivered", logger.Err(err))
		}
	}
	if phone.Call != nil {
		if err := uc.dispatcher.PlaceCall(ctx, b, *phone.Call); err != nil {
			log.Warn("Call not placed", logger.Err(err))
		}
	}

	if err := uc.dispatcher.SendText(ctx, b, update); err != nil {
		if remote.IsNotFound(err) {
			uc.rooms.ForgetRoom(ctx, b)
		}
		return nil, err
	}

	return &PressResult{Button: name, Count: count}, nil
}
