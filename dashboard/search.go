package dashboard

import (
	"strings"
	"sync"
	"time"

	"github.com/crmlite/leadboard/bus"
)

// DefaultSearchDelay is the debounce window for search-as-you-type.
const DefaultSearchDelay = 300 * time.Millisecond

// SearchBox debounces text input into search:query intents. The debounce
// timer is a component-local resource scoped to the component's lifetime.
type SearchBox struct {
	bus   *bus.Bus
	view  SearchView
	delay time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	current   string
	destroyed bool
}

func NewSearchBox(b *bus.Bus, view SearchView, delay time.Duration) *SearchBox {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchBox{bus: b, view: view, delay: delay}
}

// Input records a keystroke's worth of text and (re)arms the debounce
// timer; only the last value within the window is emitted.
func (s *SearchBox) Input(value string) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.current = value
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.emit(value, false)
	})
	s.mu.Unlock()
}

// Submit bypasses the debounce and emits the current value immediately.
func (s *SearchBox) Submit() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	value := s.current
	s.stopTimer()
	s.mu.Unlock()

	s.emit(value, true)
}

// Clear empties the box and emits an immediate empty query.
func (s *SearchBox) Clear() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.current = ""
	s.stopTimer()
	s.mu.Unlock()

	s.view.SetValue("")
	s.emit("", true)
}

// Reset empties the box without emitting. The controller uses it when
// paging away from an active search, where the page load itself replaces
// the filtered view.
func (s *SearchBox) Reset() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.current = ""
	s.stopTimer()
	s.mu.Unlock()

	s.view.SetValue("")
}

func (s *SearchBox) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SearchBox) emit(value string, immediate bool) {
	s.mu.Lock()
	destroyed := s.destroyed
	s.mu.Unlock()
	if destroyed {
		return
	}

	term := strings.TrimSpace(value)
	s.bus.Publish(bus.SearchQuery, bus.Query{
		Term:      term,
		Immediate: immediate,
		IsEmpty:   term == "",
	})
}

// stopTimer must be called with the lock held.
func (s *SearchBox) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SearchBox) Destroy() {
	s.mu.Lock()
	s.destroyed = true
	s.stopTimer()
	s.mu.Unlock()
}
