package app

import (
	"sync"

	"quiz-results-service/internal/domain"
)

// Hub fans leaderboard snapshots out to live subscribers, keyed by quiz name.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan domain.Leaderboard]struct{})}
}

// Subscribe registers a channel for quizName and primes it with initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *Hub) Subscribe(quizName string, initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	h.mu.Lock()
	subs, ok := h.subscribers[quizName]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		h.subscribers[quizName] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[quizName]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, quizName)
		}
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone listens to quizName.
func (h *Hub) HasSubscribers(quizName string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[quizName]) > 0
}

// Publish delivers lb to every subscriber of its quiz. A full channel loses its
// oldest snapshot so slow readers never block publishers.
func (h *Hub) Publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[lb.QuizName] {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
