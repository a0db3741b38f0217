package dashboard

import (
	"strings"
	"sync"

	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/model"
)

// SubmissionModal shows one submission's detail. It renders whatever record
// it is given and emits status-change and comment intents; committing a
// status change is the controller's business, so the modal also listens for
// the revert instruction that follows a rejected update.
type SubmissionModal struct {
	bus  *bus.Bus
	view ModalView

	mu        sync.Mutex
	current   *model.Submission
	destroyed bool

	revertSub *bus.Subscription
}

func NewSubmissionModal(b *bus.Bus, view ModalView) *SubmissionModal {
	m := &SubmissionModal{bus: b, view: view}
	m.revertSub = b.Subscribe(bus.ModalStatusReverted, m.onStatusReverted)
	return m
}

// Open fills the modal with the submission and shows it. Comments arrive
// separately through RenderComments once loaded.
func (m *SubmissionModal) Open(sub model.Submission) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	cp := sub
	m.current = &cp
	m.mu.Unlock()

	m.view.ShowDetails(newDetails(sub))
	m.view.Show()
}

func (m *SubmissionModal) Close() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.current = nil
	m.mu.Unlock()

	m.view.Hide()
}

// Current reports the displayed submission, if the modal is open.
func (m *SubmissionModal) Current() (model.Submission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return model.Submission{}, false
	}
	return *m.current, true
}

// ChangeStatus is the user intent of picking a new status in the modal.
// The displayed value before the change rides along so a failed update can
// be rolled back.
func (m *SubmissionModal) ChangeStatus(newStatus model.Status) {
	m.mu.Lock()
	if m.destroyed || m.current == nil || !newStatus.Valid() {
		m.mu.Unlock()
		return
	}
	id := m.current.SubmissionID
	original := m.current.Status
	m.mu.Unlock()

	if newStatus == original {
		return
	}
	m.bus.Publish(bus.SubmissionStatusChange, bus.StatusChange{
		SubmissionID:   id,
		NewStatus:      newStatus,
		OriginalStatus: original,
	})
}

// Update refreshes the modal when the displayed submission changed in the
// store. Records for other submissions are ignored.
func (m *SubmissionModal) Update(sub model.Submission) {
	m.mu.Lock()
	if m.destroyed || m.current == nil || m.current.SubmissionID != sub.SubmissionID {
		m.mu.Unlock()
		return
	}
	cp := sub
	m.current = &cp
	m.mu.Unlock()

	m.view.ShowDetails(newDetails(sub))
}

// RenderComments shows the comment list, newest first.
func (m *SubmissionModal) RenderComments(comments []model.Comment) {
	m.mu.Lock()
	destroyed := m.destroyed
	m.mu.Unlock()
	if destroyed {
		return
	}

	items := make([]CommentItem, len(comments))
	for i, c := range comments {
		items[i] = newCommentItem(c)
	}
	m.view.ShowComments(items)
}

// PrependComment optimistically puts a freshly posted comment on top.
func (m *SubmissionModal) PrependComment(c model.Comment) {
	m.mu.Lock()
	destroyed := m.destroyed
	m.mu.Unlock()
	if !destroyed {
		m.view.PrependComment(newCommentItem(c))
	}
}

// AddComment is the user intent of posting a comment on the displayed
// submission. Blank text never leaves the component.
func (m *SubmissionModal) AddComment(text string) {
	m.mu.Lock()
	if m.destroyed || m.current == nil {
		m.mu.Unlock()
		return
	}
	id := m.current.SubmissionID
	m.mu.Unlock()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	m.bus.Publish(bus.CommentAdd, bus.CommentIntent{SubmissionID: id, Text: trimmed})
}

func (m *SubmissionModal) onStatusReverted(payload any) {
	reverted, ok := payload.(bus.StatusReverted)
	if !ok {
		return
	}

	m.mu.Lock()
	if m.destroyed || m.current == nil || m.current.SubmissionID != reverted.SubmissionID {
		m.mu.Unlock()
		return
	}
	m.current.Status = reverted.OriginalStatus
	m.mu.Unlock()

	m.view.SetStatus(reverted.OriginalStatus)
}

func (m *SubmissionModal) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	m.current = nil
	m.mu.Unlock()

	m.revertSub.Unsubscribe()
}
