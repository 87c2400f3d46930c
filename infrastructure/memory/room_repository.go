package memory

import (
	"context"
	"sync"

	"github.com/alexmorbo/bttn-relay/domain/room"
)

// RoomRepository is the process-local room id cache used when no Redis
// address is configured.
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]string
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{rooms: make(map[string]string)}
}

func (r *RoomRepository) FindRoomID(_ context.Context, title string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.rooms[title]
	if !ok {
		return "", room.ErrNotFound
	}
	return id, nil
}

func (r *RoomRepository) SaveRoomID(_ context.Context, title, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[title] = roomID
	return nil
}

func (r *RoomRepository) DeleteRoomID(_ context.Context, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, title)
	return nil
}

func (r *RoomRepository) Ping(context.Context) error {
	return nil
}
