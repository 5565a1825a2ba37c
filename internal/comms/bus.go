package comms

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ErrClosed is returned by Send after Close; the log is no longer accepting
// traffic.
var ErrClosed = errors.New("message bus closed")

// ValidationError reports a send rejected for bad input. No state is mutated
// when Send returns one.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BusConfig carries the tunables for a message bus.
type BusConfig struct {
	CommandNode   string        // recipient of generated status traffic
	HistoryCap    int           // generator-path truncation limit
	ReplyDelayMin time.Duration // lower bound for simulated responses
	ReplyDelayMax time.Duration // upper bound for simulated responses
	SeedMessages  []Message     // oldest first; ids are assigned 1..n
	StatusPhrases []string
	ReplyPools    map[Type][]string
}

// Bus owns the ordered message log (newest first). Id assignment and log
// mutation form a single serialized critical section, so concurrent sends,
// scheduled responses, and the periodic generator never race.
type Bus struct {
	mu      sync.Mutex
	log     []Message
	nextID  int
	closed  bool
	pending map[int]*time.Timer // keyed by originating message id

	commandNode   string
	historyCap    int
	replyDelayMin time.Duration
	replyDelayMax time.Duration
	statusPhrases []string
	replyPools    map[Type][]string

	rng    *rand.Rand
	now    func() time.Time
	notify func(Message)
}

// NewBus builds a bus from config, seeding the log and the id counter. The
// id counter starts after the seed messages.
func NewBus(cfg BusConfig, rng *rand.Rand, now func() time.Time) *Bus {
	b := &Bus{
		pending:       make(map[int]*time.Timer),
		commandNode:   cfg.CommandNode,
		historyCap:    cfg.HistoryCap,
		replyDelayMin: cfg.ReplyDelayMin,
		replyDelayMax: cfg.ReplyDelayMax,
		statusPhrases: cfg.StatusPhrases,
		replyPools:    cfg.ReplyPools,
		rng:           rng,
		now:           now,
	}
	if b.historyCap <= 0 {
		b.historyCap = 50
	}
	if b.replyDelayMin <= 0 {
		b.replyDelayMin = 2 * time.Second
	}
	if b.replyDelayMax < b.replyDelayMin {
		b.replyDelayMax = 5 * time.Second
	}
	if len(b.statusPhrases) == 0 {
		b.statusPhrases = DefaultStatusPhrases
	}
	if b.replyPools == nil {
		b.replyPools = defaultReplyPools
	}
	for i, seed := range cfg.SeedMessages {
		seed.ID = i + 1
		if seed.Timestamp.IsZero() {
			seed.Timestamp = now()
		}
		// newest first
		b.log = append([]Message{seed}, b.log...)
	}
	b.nextID = len(cfg.SeedMessages) + 1
	return b
}

// SetNotify registers an observer invoked after every inserted message. The
// callback runs outside the bus lock.
func (b *Bus) SetNotify(fn func(Message)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notify = fn
}

// Send validates and inserts a direct message, then schedules its simulated
// response. Direct sends never truncate the log.
func (b *Bus) Send(sender, recipient string, t Type, priority int, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Message{}, ErrClosed
	}
	msg := b.insertLocked(sender, recipient, t, priority, content)
	notify := b.notify
	b.mu.Unlock()

	if notify != nil {
		notify(msg)
	}
	b.ScheduleSimulatedResponse(msg)
	return msg, nil
}

// ScheduleSimulatedResponse queues a one-shot delayed reply to a direct
// message. Broadcasts and self-addressed messages get no reply. The task is
// keyed by the originating message id and cancelled on Close.
func (b *Bus) ScheduleSimulatedResponse(original Message) {
	if original.Recipient == Broadcast || original.Sender == original.Recipient {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	spread := b.replyDelayMax - b.replyDelayMin
	delay := b.replyDelayMin
	if spread > 0 {
		delay += time.Duration(b.rng.Int63n(int64(spread)))
	}
	b.pending[original.ID] = time.AfterFunc(delay, func() {
		b.fireReply(original)
	})
}

func (b *Bus) fireReply(original Message) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	delete(b.pending, original.ID)

	pool, ok := b.replyPools[original.Type]
	if !ok || len(pool) == 0 {
		pool = genericReplies
	}
	content := pool[b.rng.Intn(len(pool))]
	msg := b.insertLocked(original.Recipient, original.Sender, TypeSitrep, PriorityRoutine, content)
	notify := b.notify
	b.mu.Unlock()

	if notify != nil {
		notify(msg)
	}
}

// GenerateStatusMessage emits one routine SITREP from a random node to the
// command node, then truncates the log to the history cap. This is the only
// path that truncates.
func (b *Bus) GenerateStatusMessage(callsigns []string) (Message, bool) {
	if len(callsigns) == 0 {
		return Message{}, false
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Message{}, false
	}
	sender := callsigns[b.rng.Intn(len(callsigns))]
	content := b.statusPhrases[b.rng.Intn(len(b.statusPhrases))]
	msg := b.insertLocked(sender, b.commandNode, TypeSitrep, PriorityRoutine, content)
	if len(b.log) > b.historyCap {
		b.log = b.log[:b.historyCap]
	}
	notify := b.notify
	b.mu.Unlock()

	if notify != nil {
		notify(msg)
	}
	return msg, true
}

// Messages returns up to limit entries, newest first. A limit <= 0 returns
// the whole log.
func (b *Bus) Messages(limit int) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.log)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Message, n)
	copy(out, b.log[:n])
	return out
}

// Len returns the current log length.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.log)
}

// Acknowledge marks a message as acknowledged. It is the only mutation
// allowed on an inserted entry.
func (b *Bus) Acknowledge(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.log {
		if b.log[i].ID == id {
			b.log[i].Acknowledged = true
			return true
		}
	}
	return false
}

// PendingReplies reports how many simulated responses are still scheduled.
func (b *Bus) PendingReplies() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Close cancels all pending reply timers and rejects further traffic. A
// timer that already fired finds the bus closed and becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, t := range b.pending {
		t.Stop()
		delete(b.pending, id)
	}
}

// insertLocked assigns the next id, stamps the message, and inserts it at
// the log head. Callers hold b.mu.
func (b *Bus) insertLocked(sender, recipient string, t Type, priority int, content string) Message {
	msg := Message{
		ID:        b.nextID,
		Sender:    sender,
		Recipient: recipient,
		Type:      t,
		Priority:  priority,
		Content:   content,
		Timestamp: b.now(),
	}
	b.nextID++
	b.log = append([]Message{msg}, b.log...)
	return msg
}
