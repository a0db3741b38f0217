package dashboard

import (
	"regexp"
	"strings"
	"sync"

	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/model"
)

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AddClientModal is the manual lead-entry form. Field-level validation runs
// before any intent is emitted; an invalid form never reaches the network.
type AddClientModal struct {
	bus  *bus.Bus
	view AddClientView

	mu        sync.Mutex
	open      bool
	destroyed bool
}

func NewAddClientModal(b *bus.Bus, view AddClientView) *AddClientModal {
	return &AddClientModal{bus: b, view: view}
}

func (m *AddClientModal) Open() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.open = true
	m.mu.Unlock()

	m.view.ClearFieldErrors()
	m.view.Show()
}

func (m *AddClientModal) Close() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.open = false
	m.mu.Unlock()

	m.view.Hide()
}

func (m *AddClientModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Save validates the form and emits the save intent. Validation failures
// render inline per field and nothing is emitted.
func (m *AddClientModal) Save(form model.ContactForm) {
	m.mu.Lock()
	destroyed := m.destroyed
	m.mu.Unlock()
	if destroyed {
		return
	}

	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Message = strings.TrimSpace(form.Message)

	m.view.ClearFieldErrors()
	valid := true
	if form.Name == "" {
		m.view.ShowFieldError("name", "Name is required")
		valid = false
	}
	if form.Email == "" {
		m.view.ShowFieldError("email", "Email is required")
		valid = false
	} else if !reEmail.MatchString(form.Email) {
		m.view.ShowFieldError("email", "Invalid email address")
		valid = false
	}
	if form.Message == "" {
		m.view.ShowFieldError("message", "Message is required")
		valid = false
	}
	if !valid {
		return
	}

	m.bus.Publish(bus.ClientSave, form)
}

// OnSaveSuccess closes and resets the form after the controller committed
// the new submission.
func (m *AddClientModal) OnSaveSuccess() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.open = false
	m.mu.Unlock()

	m.view.Reset()
	m.view.Hide()
}

// OnSaveError keeps the form open so the input is not lost.
func (m *AddClientModal) OnSaveError(err error) {
	m.mu.Lock()
	destroyed := m.destroyed
	m.mu.Unlock()
	if destroyed {
		return
	}
	m.view.ShowFieldError("form", "Could not save the client, try again")
}

func (m *AddClientModal) Destroy() {
	m.mu.Lock()
	m.destroyed = true
	m.open = false
	m.mu.Unlock()
}
