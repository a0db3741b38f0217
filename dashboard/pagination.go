package dashboard

import (
	"sync"

	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/model"
)

// Pagination renders the page indicator and emits prev/next intents. Both
// intents are guarded by the last metadata it was given: clicking a
// disabled control does nothing.
type Pagination struct {
	bus  *bus.Bus
	view PaginationView

	mu        sync.Mutex
	current   *model.PageInfo
	destroyed bool
}

func NewPagination(b *bus.Bus, view PaginationView) *Pagination {
	return &Pagination{bus: b, view: view}
}

// Update renders fresh pagination metadata. A nil info hides the controls.
func (p *Pagination) Update(info *model.PageInfo) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.current = info
	p.mu.Unlock()

	if info == nil {
		p.view.Hide()
		return
	}
	p.view.ShowPage(info.Page, info.TotalPages, info.HasPrev, info.HasNext)
}

// ShowSearchResult switches to the search-result display; the controls stay
// disabled until the next Update.
func (p *Pagination) ShowSearchResult(count int) {
	p.mu.Lock()
	destroyed := p.destroyed
	p.mu.Unlock()
	if !destroyed {
		p.view.ShowSearchResult(count)
	}
}

// Prev emits the previous-page intent when a previous page exists.
func (p *Pagination) Prev() {
	p.mu.Lock()
	info := p.current
	ok := !p.destroyed && info != nil && info.HasPrev
	p.mu.Unlock()
	if ok {
		p.bus.Publish(bus.PaginationPrev, info.Page-1)
	}
}

// Next emits the next-page intent when a next page exists.
func (p *Pagination) Next() {
	p.mu.Lock()
	info := p.current
	ok := !p.destroyed && info != nil && info.HasNext
	p.mu.Unlock()
	if ok {
		p.bus.Publish(bus.PaginationNext, info.Page+1)
	}
}

func (p *Pagination) Reset() {
	p.mu.Lock()
	destroyed := p.destroyed
	p.current = nil
	p.mu.Unlock()
	if !destroyed {
		p.view.Hide()
	}
}

func (p *Pagination) Destroy() {
	p.mu.Lock()
	p.destroyed = true
	p.mu.Unlock()
}
