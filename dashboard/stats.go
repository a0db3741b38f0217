package dashboard

import (
	"sync"

	"github.com/crmlite/leadboard/model"
)

// StatsPanel keeps the aggregate counters and renders them formatted
// (1.2K, 3.4M). It emits no intents.
type StatsPanel struct {
	view StatsView

	mu        sync.Mutex
	stats     model.Stats
	destroyed bool
}

func NewStatsPanel(view StatsView) *StatsPanel {
	return &StatsPanel{view: view}
}

// Update replaces all counters at once.
func (p *StatsPanel) Update(stats model.Stats) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.stats = stats
	p.mu.Unlock()

	p.view.ShowTotal(formatCount(stats.TotalSubmissions))
	p.view.ShowToday(formatCount(stats.TodayCount))
	p.view.ShowWeek(formatCount(stats.ThisWeekCount))
	p.view.ShowMonth(formatCount(stats.ThisMonthCount))
}

// UpdateFromPageInfo refreshes the total from pagination metadata, which
// carries the authoritative total_count on every page fetch.
func (p *StatsPanel) UpdateFromPageInfo(info *model.PageInfo) {
	if info == nil {
		return
	}
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.stats.TotalSubmissions = info.TotalCount
	total := p.stats.TotalSubmissions
	p.mu.Unlock()

	p.view.ShowTotal(formatCount(total))
}

// IncrementTotal bumps the total counter for a locally created submission.
func (p *StatsPanel) IncrementTotal() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.stats.TotalSubmissions++
	total := p.stats.TotalSubmissions
	p.mu.Unlock()

	p.view.ShowTotal(formatCount(total))
}

// IncrementToday bumps today's counter for a locally created submission.
func (p *StatsPanel) IncrementToday() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.stats.TodayCount++
	today := p.stats.TodayCount
	p.mu.Unlock()

	p.view.ShowToday(formatCount(today))
}

func (p *StatsPanel) Stats() model.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *StatsPanel) Destroy() {
	p.mu.Lock()
	p.destroyed = true
	p.mu.Unlock()
}
