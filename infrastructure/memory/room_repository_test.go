package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmorbo/bttn-relay/domain/room"
)

func TestRoomRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository()

	_, err := repo.FindRoomID(ctx, "Incident room")
	assert.ErrorIs(t, err, room.ErrNotFound)

	require.NoError(t, repo.SaveRoomID(ctx, "Incident room", "r1"))
	id, err := repo.FindRoomID(ctx, "Incident room")
	require.NoError(t, err)
	assert.Equal(t, "r1", id)

	require.NoError(t, repo.SaveRoomID(ctx, "Incident room", "r2"))
	id, _ = repo.FindRoomID(ctx, "Incident room")
	assert.Equal(t, "r2", id)

	require.NoError(t, repo.DeleteRoomID(ctx, "Incident room"))
	_, err = repo.FindRoomID(ctx, "Incident room")
	assert.ErrorIs(t, err, room.ErrNotFound)

	assert.NoError(t, repo.Ping(ctx))
}

func TestRoomRepositoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			title := fmt.Sprintf("room-%d", i%5)
			_ = repo.SaveRoomID(ctx, title, fmt.Sprintf("id-%d", i))
			_, _ = repo.FindRoomID(ctx, title)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		_, err := repo.FindRoomID(ctx, fmt.Sprintf("room-%d", i))
		assert.NoError(t, err)
	}
}
