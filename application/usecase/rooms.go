package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexmorbo/bttn-relay/application/port"
	"github.com/alexmorbo/bttn-relay/domain/button"
	"github.com/alexmorbo/bttn-relay/domain/room"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

// RoomManager finds, creates and deletes the messaging room of a button.
// Callers hold the button lock.
type RoomManager struct {
	messaging port.MessagingClient
	store     port.RoomStore
	logger    *slog.Logger
}

func NewRoomManager(messaging port.MessagingClient, store port.RoomStore, log *slog.Logger) *RoomManager {
	return &RoomManager{
		messaging: messaging,
		store:     store,
		logger:    log.With("component", "rooms"),
	}
}

// ResolveRoom returns the id of the button's room, creating the room when no
// remote title contains the configured name.
func (m *RoomManager) ResolveRoom(ctx context.Context, b *button.Button) (string, error) {
	if id := b.RoomID(); id != "" {
		return id, nil
	}

	title, err := roomTitle(b)
	if err != nil {
		return "", err
	}

	id, err := m.store.FindRoomID(ctx, title)
	switch {
	case err == nil:
		b.SetRoomID(id)
		return id, nil
	case errors.Is(err, room.ErrNotFound):
	default:
		m.logger.Warn("Room cache lookup failed, listing remote rooms",
			logger.Button(b.Name()),
			logger.Err(err),
		)
	}

	found, err := m.findRemote(ctx, title)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return m.CreateRoom(ctx, b)
		}
		return "", err
	}

	m.remember(ctx, b, title, found.ID)
	return found.ID, nil
}

// CreateRoom creates the room, looks it up again by title and then adds
// moderators and participants. A failed membership aborts without rolling
// the room back.
func (m *RoomManager) CreateRoom(ctx context.Context, b *button.Button) (string, error) {
	title, err := roomTitle(b)
	if err != nil {
		return "", err
	}

	created, err := m.messaging.CreateRoom(ctx, title)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	roomsCreatedCounter.Inc()

	id := created.ID
	found, err := m.findRemote(ctx, title)
	switch {
	case err == nil:
		id = found.ID
	case errors.Is(err, room.ErrNotFound):
		m.logger.Warn("Created room not listed yet, using id from creation",
			logger.Button(b.Name()),
			slog.String("room_id", created.ID),
		)
	default:
		return "", err
	}

	m.logger.Info("Room created",
		logger.Event("room_created",
			logger.Button(b.Name()),
			slog.String("title", title),
			slog.String("room_id", id),
		),
	)

	m.remember(ctx, b, title, id)

	if err := m.AddAudience(ctx, b, id); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteRoom removes every remote room whose title contains the button's
// room name. Finding none is not an error.
func (m *RoomManager) DeleteRoom(ctx context.Context, b *button.Button) error {
	title, err := roomTitle(b)
	if err != nil {
		return err
	}

	rooms, err := m.messaging.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	deleted := 0
	for _, r := range rooms {
		if !room.Matches(title, r.Title) {
			continue
		}
		if err := m.messaging.DeleteRoom(ctx, r.ID); err != nil {
			return fmt.Errorf("delete room %s: %w", r.ID, err)
		}
		deleted++
		roomsDeletedCounter.Inc()
	}

	if deleted == 0 {
		m.logger.Info("No room to delete",
			logger.Event("room_not_found",
				logger.Button(b.Name()),
				slog.String("title", title),
			),
		)
	} else {
		m.logger.Info("Rooms deleted",
			logger.Event("room_deleted",
				logger.Button(b.Name()),
				slog.String("title", title),
				slog.Int("count", deleted),
			),
		)
	}

	m.forget(ctx, b, title)
	return nil
}

// ForgetRoom drops the button's room id from memory and from the room store
// so the next press resolves the room again. Used when the room was removed
// behind the relay's back.
func (m *RoomManager) ForgetRoom(ctx context.Context, b *button.Button) {
	title, err := roomTitle(b)
	if err != nil {
		b.ClearRoomID()
		return
	}

	m.logger.Warn("Room is gone, dropping cached id",
		logger.Event("room_forgotten",
			logger.Button(b.Name()),
			slog.String("title", title),
			slog.String("room_id", b.RoomID()),
		),
	)
	roomsForgottenCounter.Inc()
	m.forget(ctx, b, title)
}

func (m *RoomManager) forget(ctx context.Context, b *button.Button, title string) {
	b.ClearRoomID()
	if err := m.store.DeleteRoomID(ctx, title); err != nil {
		m.logger.Warn("Failed to drop cached room id",
			logger.Button(b.Name()),
			logger.Err(err),
		)
	}
}

// AddAudience adds moderators first, then participants.
func (m *RoomManager) AddAudience(ctx context.Context, b *button.Button, roomID string) error {
	for _, email := range b.Moderators() {
		if err := m.messaging.AddMembership(ctx, roomID, email, true); err != nil {
			return fmt.Errorf("add moderator %s: %w", email, err)
		}
	}
	for _, email := range b.Participants() {
		if err := m.messaging.AddMembership(ctx, roomID, email, false); err != nil {
			return fmt.Errorf("add participant %s: %w", email, err)
		}
	}
	return nil
}

func (m *RoomManager) findRemote(ctx context.Context, title string) (room.Room, error) {
	rooms, err := m.messaging.ListRooms(ctx)
	if err != nil {
		return room.Room{}, fmt.Errorf("list rooms: %w", err)
	}
	for _, r := range rooms {
		if room.Matches(title, r.Title) {
			return r, nil
		}
	}
	return room.Room{}, room.ErrNotFound
}

func (m *RoomManager) remember(ctx context.Context, b *button.Button, title, roomID string) {
	b.SetRoomID(roomID)
	if err := m.store.SaveRoomID(ctx, title, roomID); err != nil {
		m.logger.Warn("Failed to cache room id",
			logger.Button(b.Name()),
			logger.Err(err),
		)
	}
}

func roomTitle(b *button.Button) (string, error) {
	if b.Room() == "" {
		return "", fmt.Errorf("%w: no room configured for button %s", button.ErrConfiguration, b.Name())
	}
	return b.Room(), nil
}
