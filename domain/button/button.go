package button

import (
	"slices"
	"sync"
	"time"
)

// Config is the merged configuration a button is built from.
type Config struct {
	Actions      []ActionItem
	Room         string
	Moderators   []string
	Participants []string
	CallerID     string
	IdleReset    time.Duration
}

// Button holds the configuration and press state of one device. Callers
// must hold Lock while reading or advancing the press state.
type Button struct {
	mu sync.Mutex

	name         Name
	actions      []ActionItem
	room         string
	moderators   []string
	participants []string
	callerID     string
	idleReset    time.Duration

	count     int
	lastPress time.Time
	roomID    string
}

func New(name Name, cfg Config) *Button {
	return &Button{
		name:         name,
		actions:      slices.Clone(cfg.Actions),
		room:         cfg.Room,
		moderators:   slices.Clone(cfg.Moderators),
		participants: slices.Clone(cfg.Participants),
		callerID:     cfg.CallerID,
		idleReset:    cfg.IdleReset,
	}
}

func (b *Button) Lock()   { b.mu.Lock() }
func (b *Button) Unlock() { b.mu.Unlock() }

func (b *Button) Name() string {
	return b.name.Value()
}

func (b *Button) Actions() []ActionItem {
	return b.actions
}

func (b *Button) Room() string {
	return b.room
}

func (b *Button) Moderators() []string {
	return b.moderators
}

func (b *Button) Participants() []string {
	return b.participants
}

// CallerID is the default source number for SMS and calls.
func (b *Button) CallerID() string {
	return b.callerID
}

func (b *Button) IdleReset() time.Duration {
	return b.idleReset
}

func (b *Button) Count() int {
	return b.count
}

func (b *Button) LastPress() time.Time {
	return b.lastPress
}

func (b *Button) RoomID() string {
	return b.roomID
}

func (b *Button) SetRoomID(id string) {
	b.roomID = id
}

func (b *Button) ClearRoomID() {
	b.roomID = ""
}

// NextAction selects what the coming press should do. If the button sat idle
// longer than its reset window the counter restarts first.
func (b *Button) NextAction(now time.Time) (Update, PhoneInstruction) {
	if b.idleReset > 0 && !b.lastPress.IsZero() && now.Sub(b.lastPress) > b.idleReset {
		b.count = 0
	}
	return SelectAction(b.actions, b.count)
}

// Advance records a press and returns the new counter. It runs whatever the
// outcome of dispatching, so a failed press still consumes its slot.
func (b *Button) Advance(now time.Time) int {
	b.count++
	b.lastPress = now
	return b.count
}

// CurrentAction returns the action selected by the most recent press.
func (b *Button) CurrentAction() (Update, PhoneInstruction) {
	return SelectAction(b.actions, max(b.count-1, 0))
}
