package port

import "context"

// RoomStore remembers which remote room id belongs to a room title.
// FindRoomID returns room.ErrNotFound on a miss.
type RoomStore interface {
	FindRoomID(ctx context.Context, title string) (string, error)
	SaveRoomID(ctx context.Context, title, roomID string) error
	DeleteRoomID(ctx context.Context, title string) error
	Ping(ctx context.Context) error
}
