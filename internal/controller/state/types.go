package state

import (
	"sync"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
)

// Session is the calendar of one chat.
type Session struct {
	ChatID int64
	Engine *calendar.Engine

	mu        sync.Mutex
	messageID int
	selected  int64
	closers   []func()
}

// MessageID is the calendar message currently shown in the chat, 0 if none.
func (s *Session) MessageID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID
}

func (s *Session) SetMessageID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageID = id
}

// Selected is the appointment whose menu is open, 0 if none.
func (s *Session) Selected() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Session) Select(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// OnClose registers fn to run when the session ends.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, fn)
}

func (s *Session) close() {
	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	for _, fn := range closers {
		fn()
	}
}
