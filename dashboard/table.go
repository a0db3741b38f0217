package dashboard

import (
	"sync"

	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/model"
)

// Table renders the submissions list and emits view/sort intents. It never
// talks to the store or the API.
type Table struct {
	bus  *bus.Bus
	view TableView

	mu        sync.Mutex
	destroyed bool
}

func NewTable(b *bus.Bus, view TableView) *Table {
	return &Table{bus: b, view: view}
}

func (t *Table) Render(subs []model.Submission) {
	if t.gone() {
		return
	}
	if len(subs) == 0 {
		t.view.RenderEmpty()
		return
	}
	rows := make([]Row, len(subs))
	for i, sub := range subs {
		rows[i] = newRow(sub)
	}
	t.view.RenderRows(rows)
}

func (t *Table) RenderLoading() {
	if !t.gone() {
		t.view.RenderLoading()
	}
}

func (t *Table) RenderError() {
	if !t.gone() {
		t.view.RenderError()
	}
}

func (t *Table) AddRow(sub model.Submission) {
	if !t.gone() {
		t.view.PrependRow(newRow(sub))
	}
}

func (t *Table) UpdateRow(sub model.Submission) {
	if !t.gone() {
		t.view.UpdateRow(newRow(sub))
	}
}

// View is the user intent of opening a submission's detail modal.
func (t *Table) View(submissionID string) {
	if !t.gone() {
		t.bus.Publish(bus.SubmissionView, submissionID)
	}
}

// Sort is the user intent of reordering by a column.
func (t *Table) Sort(by string, order model.Order) {
	if !t.gone() {
		t.bus.Publish(bus.TableSort, model.Sort{By: by, Order: order})
	}
}

// Destroy makes all further calls no-ops. Safe to call more than once.
func (t *Table) Destroy() {
	t.mu.Lock()
	t.destroyed = true
	t.mu.Unlock()
}

func (t *Table) gone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}
