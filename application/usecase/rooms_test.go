package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmorbo/bttn-relay/domain/button"
	"github.com/alexmorbo/bttn-relay/domain/room"
)

func newTestButton(t *testing.T, name string, cfg button.Config) *button.Button {
	t.Helper()
	n, err := button.NewName(name)
	require.NoError(t, err)
	return button.New(n, cfg)
}

func TestRoomManager_ResolveExistingRoom(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.rooms = []room.Room{{ID: "r0", Title: "Other"}, {ID: "r1", Title: "Incident - floor 2"}, {ID: "r2", Title: "Incident"}}
	store := newMockRoomStore()
	manager := NewRoomManager(messaging, store, testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})

	id, err := manager.ResolveRoom(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, "r1", id, "first title containing the room name wins")
	assert.Equal(t, "r1", b.RoomID())
	assert.Equal(t, "r1", store.rooms["Incident"])
	assert.Zero(t, messaging.createCalls)

	_, err = manager.ResolveRoom(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 1, messaging.listCalls, "resolved id is reused")
}

func TestRoomManager_ResolveFromCache(t *testing.T) {
	messaging := newMockMessagingClient()
	store := newMockRoomStore()
	store.rooms["Incident"] = "cached"
	manager := NewRoomManager(messaging, store, testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})

	id, err := manager.ResolveRoom(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "cached", id)
	assert.Zero(t, messaging.listCalls)
}

func TestRoomManager_CacheFailureFallsBackToListing(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.rooms = []room.Room{{ID: "r1", Title: "Incident"}}
	store := newMockRoomStore()
	store.findErr = errors.New("connection refused")
	manager := NewRoomManager(messaging, store, testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})

	id, err := manager.ResolveRoom(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "r1", id)
}

func TestRoomManager_CreatesMissingRoomWithAudience(t *testing.T) {
	messaging := newMockMessagingClient()
	manager := NewRoomManager(messaging, newMockRoomStore(), testLogger())
	b := newTestButton(t, "incident", button.Config{
		Room:         "Incident",
		Moderators:   []string{"boss@example.com"},
		Participants: []string{"ops1@example.com", "ops2@example.com"},
	})

	id, err := manager.ResolveRoom(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, "room-new", id)
	assert.Equal(t, 1, messaging.createCalls)
	assert.Equal(t, 2, messaging.listCalls, "room is looked up again after creation")
	assert.Equal(t, []membership{
		{roomID: "room-new", email: "boss@example.com", moderator: true},
		{roomID: "room-new", email: "ops1@example.com", moderator: false},
		{roomID: "room-new", email: "ops2@example.com", moderator: false},
	}, messaging.memberships)
}

func TestRoomManager_CreateFallsBackToCreatedID(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.hideCreated = true
	manager := NewRoomManager(messaging, newMockRoomStore(), testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})

	id, err := manager.CreateRoom(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "room-new", id)
}

func TestRoomManager_AudienceFailureAbortsWithoutRollback(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.membershipErr = func(email string) error {
		if email == "ops1@example.com" {
			return errors.New("person not found")
		}
		return nil
	}
	manager := NewRoomManager(messaging, newMockRoomStore(), testLogger())
	b := newTestButton(t, "incident", button.Config{
		Room:         "Incident",
		Moderators:   []string{"boss@example.com"},
		Participants: []string{"ops1@example.com", "ops2@example.com"},
	})

	_, err := manager.ResolveRoom(context.Background(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ops1@example.com")
	assert.Len(t, messaging.memberships, 1)
	assert.Empty(t, messaging.deleted)
	assert.Len(t, messaging.rooms, 1)
}

func TestRoomManager_ListFailurePropagates(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.listErr = errors.New("unauthorized")
	manager := NewRoomManager(messaging, newMockRoomStore(), testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})

	_, err := manager.ResolveRoom(context.Background(), b)
	require.Error(t, err)
	assert.Zero(t, messaging.createCalls)
}

func TestRoomManager_NoRoomConfigured(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.rooms = []room.Room{{ID: "r1", Title: "Anything"}}
	manager := NewRoomManager(messaging, newMockRoomStore(), testLogger())
	b := newTestButton(t, "incident", button.Config{})

	_, err := manager.ResolveRoom(context.Background(), b)
	assert.ErrorIs(t, err, button.ErrConfiguration)

	err = manager.DeleteRoom(context.Background(), b)
	assert.ErrorIs(t, err, button.ErrConfiguration)
	assert.Empty(t, messaging.deleted)
}

func TestRoomManager_DeleteRoomRemovesEveryMatch(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.rooms = []room.Room{
		{ID: "r1", Title: "Incident"},
		{ID: "r2", Title: "Other"},
		{ID: "r3", Title: "Incident (old)"},
	}
	store := newMockRoomStore()
	store.rooms["Incident"] = "r1"
	manager := NewRoomManager(messaging, store, testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})
	b.SetRoomID("r1")

	err := manager.DeleteRoom(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, []string{"r1", "r3"}, messaging.deleted)
	assert.Empty(t, b.RoomID())
	assert.NotContains(t, store.rooms, "Incident")
}

func TestRoomManager_DeleteRoomWithoutMatch(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.rooms = []room.Room{{ID: "r2", Title: "Other"}}
	manager := NewRoomManager(messaging, newMockRoomStore(), testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})

	assert.NoError(t, manager.DeleteRoom(context.Background(), b))
	assert.Empty(t, messaging.deleted)
}

func TestRoomManager_DeleteFailurePropagates(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.rooms = []room.Room{{ID: "r1", Title: "Incident"}}
	messaging.deleteErr = errors.New("forbidden")
	manager := NewRoomManager(messaging, newMockRoomStore(), testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})

	assert.Error(t, manager.DeleteRoom(context.Background(), b))
}

func TestRoomManager_ForgetRoomDropsCachedID(t *testing.T) {
	messaging := newMockMessagingClient()
	messaging.rooms = []room.Room{{ID: "r1", Title: "Incident"}}
	store := newMockRoomStore()
	manager := NewRoomManager(messaging, store, testLogger())
	b := newTestButton(t, "incident", button.Config{Room: "Incident"})

	_, err := manager.ResolveRoom(context.Background(), b)
	require.NoError(t, err)
	require.Equal(t, "r1", store.rooms["Incident"])

	manager.ForgetRoom(context.Background(), b)

	assert.Empty(t, b.RoomID())
	assert.NotContains(t, store.rooms, "Incident")
	assert.Empty(t, messaging.deleted, "the remote room is left alone")

	_, err = manager.ResolveRoom(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 2, messaging.listCalls)
}
