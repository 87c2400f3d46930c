package port

import (
	"context"

	"github.com/alexmorbo/bttn-relay/domain/button"
	"github.com/alexmorbo/bttn-relay/domain/room"
)

type MessagingClient interface {
	ListRooms(ctx context.Context) ([]room.Room, error)
	CreateRoom(ctx context.Context, title string) (room.Room, error)
	DeleteRoom(ctx context.Context, roomID string) error
	AddMembership(ctx context.Context, roomID, personEmail string, moderator bool) error
	PostMessage(ctx context.Context, roomID string, update button.Update) error
}
