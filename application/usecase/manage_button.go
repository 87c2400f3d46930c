package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexmorbo/bttn-relay/domain/token"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

// ManageButtonUseCase tears down and rebuilds a button's room.
type ManageButtonUseCase struct {
	registry *Registry
	rooms    *RoomManager
	codec    *token.Codec
	logger   *slog.Logger
}

func NewManageButtonUseCase(registry *Registry, rooms *RoomManager, codec *token.Codec, log *slog.Logger) *ManageButtonUseCase {
	return &ManageButtonUseCase{
		registry: registry,
		rooms:    rooms,
		codec:    codec,
		logger:   log.With("component", "admin"),
	}
}

// Delete removes the button's rooms and forgets its state, so the next press
// starts from the first action in a fresh room.
func (uc *ManageButtonUseCase) Delete(ctx context.Context, tok string) (string, error) {
	name, err := uc.codec.Verify(tok, token.ActionDelete)
	if err != nil {
		return "", err
	}

	if err := uc.teardown(ctx, name); err != nil {
		return "", err
	}

	uc.logger.Info("Button deleted",
		logger.Event("button_deleted", logger.Button(name)),
	)
	return name, nil
}

// Initialise deletes the button's rooms, reloads its configuration and
// creates a new room with the configured audience.
func (uc *ManageButtonUseCase) Initialise(ctx context.Context, tok string) (string, error) {
	name, err := uc.codec.Verify(tok, token.ActionInitialise)
	if err != nil {
		return "", err
	}

	if err := uc.teardown(ctx, name); err != nil {
		return "", err
	}

	b, err := uc.registry.Load(name)
	if err != nil {
		return "", err
	}

	b.Lock()
	defer b.Unlock()

	roomID, err := uc.rooms.ResolveRoom(ctx, b)
	if err != nil {
		return "", fmt.Errorf("resolve room: %w", err)
	}

	uc.logger.Info("Button initialised",
		logger.Event("button_initialised",
			logger.Button(name),
			slog.String("room_id", roomID),
		),
	)
	return name, nil
}

func (uc *ManageButtonUseCase) teardown(ctx context.Context, name string) error {
	b, err := uc.registry.Load(name)
	if err != nil {
		return err
	}

	b.Lock()
	defer b.Unlock()

	if err := uc.rooms.DeleteRoom(ctx, b); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	uc.registry.Evict(name)
	return nil
}
