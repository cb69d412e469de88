package store

import (
	"sync"

	"codewords/internal/domain"
)

const subscriberBuffer = 64

// notifier fans written snapshots out to per-room subscribers
type notifier struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan *domain.Session
	nextID int
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[string]map[int]chan *domain.Session)}
}

func (n *notifier) subscribe(roomCode string) (<-chan *domain.Session, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	ch := make(chan *domain.Session, subscriberBuffer)
	if n.subs[roomCode] == nil {
		n.subs[roomCode] = make(map[int]chan *domain.Session)
	}
	n.subs[roomCode][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if c, ok := n.subs[roomCode][id]; ok {
				delete(n.subs[roomCode], id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// publish delivers a copy of s to every subscriber of its room. A
// subscriber that has fallen behind loses its oldest pending snapshot,
// since only the latest one matters.
func (n *notifier) publish(s *domain.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs[s.RoomCode] {
		snap := s.Clone()
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// closeRoom ends every subscription of a room
func (n *notifier) closeRoom(roomCode string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, ch := range n.subs[roomCode] {
		close(ch)
		delete(n.subs[roomCode], id)
	}
	delete(n.subs, roomCode)
}

func (n *notifier) closeAll() {
	n.mu.Lock()
	rooms := make([]string, 0, len(n.subs))
	for room := range n.subs {
		rooms = append(rooms, room)
	}
	n.mu.Unlock()

	for _, room := range rooms {
		n.closeRoom(room)
	}
}
