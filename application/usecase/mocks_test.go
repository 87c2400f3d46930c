package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/alexmorbo/bttn-relay/domain/button"
	"github.com/alexmorbo/bttn-relay/domain/room"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type postedMessage struct {
	roomID string
	update button.Update
}

type membership struct {
	roomID    string
	email     string
	moderator bool
}

type mockMessagingClient struct {
	mu sync.Mutex

	rooms         []room.Room
	nextRoomID    string
	listErr       error
	createErr     error
	deleteErr     error
	postErr       error
	membershipErr func(email string) error
	hideCreated   bool

	listCalls   int
	createCalls int
	deleted     []string
	memberships []membership
	posted      []postedMessage
}

func newMockMessagingClient() *mockMessagingClient {
	return &mockMessagingClient{nextRoomID: "room-new"}
}

func (m *mockMessagingClient) ListRooms(ctx context.Context) ([]room.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]room.Room(nil), m.rooms...), nil
}

func (m *mockMessagingClient) CreateRoom(ctx context.Context, title string) (room.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return room.Room{}, m.createErr
	}
	created := room.Room{ID: m.nextRoomID, Title: title}
	if !m.hideCreated {
		m.rooms = append(m.rooms, created)
	}
	return created, nil
}

func (m *mockMessagingClient) DeleteRoom(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, roomID)
	kept := m.rooms[:0]
	for _, r := range m.rooms {
		if r.ID != roomID {
			kept = append(kept, r)
		}
	}
	m.rooms = kept
	return nil
}

func (m *mockMessagingClient) AddMembership(ctx context.Context, roomID, personEmail string, moderator bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.membershipErr != nil {
		if err := m.membershipErr(personEmail); err != nil {
			return err
		}
	}
	m.memberships = append(m.memberships, membership{roomID: roomID, email: personEmail, moderator: moderator})
	return nil
}

func (m *mockMessagingClient) PostMessage(ctx context.Context, roomID string, update button.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return m.postErr
	}
	m.posted = append(m.posted, postedMessage{roomID: roomID, update: update})
	return nil
}

func (m *mockMessagingClient) markdowns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.posted {
		if p.update.Markdown != "" {
			out = append(out, p.update.Markdown)
		}
	}
	return out
}

type phoneRequest struct {
	from   string
	to     string
	detail string
}

type mockTelephonyClient struct {
	mu sync.Mutex

	smsErr  func(to string) error
	callErr func(to string) error

	sms   []phoneRequest
	calls []phoneRequest
}

func (m *mockTelephonyClient) SendSMS(ctx context.Context, from, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.smsErr != nil {
		if err := m.smsErr(to); err != nil {
			return err
		}
	}
	m.sms = append(m.sms, phoneRequest{from: from, to: to, detail: body})
	return nil
}

func (m *mockTelephonyClient) PlaceCall(ctx context.Context, from, to, callbackURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.callErr != nil {
		if err := m.callErr(to); err != nil {
			return err
		}
	}
	m.calls = append(m.calls, phoneRequest{from: from, to: to, detail: callbackURL})
	return nil
}

type mockRoomStore struct {
	mu      sync.Mutex
	rooms   map[string]string
	findErr error
}

func newMockRoomStore() *mockRoomStore {
	return &mockRoomStore{rooms: make(map[string]string)}
}

func (m *mockRoomStore) FindRoomID(ctx context.Context, title string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return "", m.findErr
	}
	id, ok := m.rooms[title]
	if !ok {
		return "", room.ErrNotFound
	}
	return id, nil
}

func (m *mockRoomStore) SaveRoomID(ctx context.Context, title, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[title] = roomID
	return nil
}

func (m *mockRoomStore) DeleteRoomID(ctx context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, title)
	return nil
}

func (m *mockRoomStore) Ping(ctx context.Context) error {
	return nil
}

type mockButtonLoader struct {
	mu        sync.Mutex
	configs   map[string]button.Config
	names     []string
	listErr   error
	loadCalls map[string]int
}

func newMockButtonLoader() *mockButtonLoader {
	return &mockButtonLoader{
		configs:   make(map[string]button.Config),
		loadCalls: make(map[string]int),
	}
}

func (m *mockButtonLoader) LoadButton(name string) button.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls[name]++
	return m.configs[name]
}

func (m *mockButtonLoader) ListButtons() ([]string, error) {
	return m.names, m.listErr
}

type mockTokenWriter struct {
	mu      sync.Mutex
	written []map[string]string
	err     error
}

func (m *mockTokenWriter) WriteTokens(tokens map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, tokens)
	return m.err
}

func (m *mockTokenWriter) last() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.written) == 0 {
		return nil
	}
	return m.written[len(m.written)-1]
}

type mockPressLimiter struct {
	allow bool
}

func (m *mockPressLimiter) Allow(string) bool {
	return m.allow
}
