package store

import (
	"strings"
	"sync"

	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/model"
)

// Store is the single source of truth for the currently loaded page of
// submissions. It owns two lists: the origin set, which is only ever
// replaced wholesale by ReplaceState, and the working set, which is either
// equal to the origin set or a filtered derivative of it. Every mutation
// happens under the store's lock and its notifications fire on the calling
// goroutine after the lock is released, so a single call is atomic from the
// caller's perspective.
//
// Consumers receive copies in event payloads and must not reach into the
// store's internals.
type Store struct {
	bus *bus.Bus

	mu          sync.RWMutex
	working     []model.Submission
	origin      []model.Submission
	pageInfo    *model.PageInfo
	filter      model.Filter
	loading     bool
	currentPage int
}

func New(b *bus.Bus) *Store {
	return &Store{bus: b, currentPage: 1}
}

type event struct {
	topic   bus.Topic
	payload any
}

func (s *Store) publish(events []event) {
	for _, e := range events {
		s.bus.Publish(e.topic, e.payload)
	}
}

// ReplaceState installs a full server page response: working set and origin
// set both become the response data, the search filter is reset, and the
// pagination metadata is replaced wholesale.
func (s *Store) ReplaceState(page model.PageResult) {
	s.mu.Lock()
	s.origin = copySubmissions(page.Data)
	s.working = copySubmissions(page.Data)
	info := page.PageInfo
	s.pageInfo = &info
	s.currentPage = page.Page
	s.filter.Search = ""

	events := []event{
		{bus.SubmissionsUpdated, copySubmissions(s.working)},
		{bus.PaginationUpdated, s.pageInfoCopy()},
	}
	s.mu.Unlock()

	s.publish(events)
}

// ApplySearchFilter recomputes the working set as the origin-set
// subsequence whose name, email or id contains term as a case-insensitive
// substring, preserving origin order. An empty or whitespace-only term
// restores the full origin set. The origin set itself is never filtered.
func (s *Store) ApplySearchFilter(term string) {
	trimmed := strings.TrimSpace(term)

	s.mu.Lock()
	var events []event
	if trimmed == "" {
		s.working = copySubmissions(s.origin)
		s.filter.Search = ""
		events = append(events, event{bus.SubmissionsUpdated, copySubmissions(s.working)})
	} else {
		needle := strings.ToLower(trimmed)
		filtered := []model.Submission{}
		for _, sub := range s.origin {
			if strings.Contains(strings.ToLower(sub.Name), needle) ||
				strings.Contains(strings.ToLower(sub.Email), needle) ||
				strings.Contains(strings.ToLower(sub.SubmissionID), needle) {
				filtered = append(filtered, sub)
			}
		}
		s.working = filtered
		s.filter.Search = trimmed
		events = append(events, event{bus.SubmissionsFiltered, copySubmissions(s.working)})
	}
	s.mu.Unlock()

	s.publish(events)
}

// UpdateSubmissionStatus mutates the status of the identified submission in
// both sets. An unknown id is a no-op: the record may belong to a page that
// is no longer loaded.
func (s *Store) UpdateSubmissionStatus(id string, status model.Status) {
	s.mu.Lock()
	var events []event
	found := false
	for i := range s.working {
		if s.working[i].SubmissionID == id {
			s.working[i].Status = status
			events = append(events, event{bus.SubmissionUpdated, s.working[i]})
			found = true
			break
		}
	}
	for i := range s.origin {
		if s.origin[i].SubmissionID == id {
			s.origin[i].Status = status
			if !found {
				events = append(events, event{bus.SubmissionUpdated, s.origin[i]})
				found = true
			}
			break
		}
	}
	s.mu.Unlock()

	s.publish(events)
}

// AddSubmission inserts at the front of both sets; freshly created records
// sort newest-first without waiting for a server re-fetch.
func (s *Store) AddSubmission(sub model.Submission) {
	s.mu.Lock()
	s.working = append([]model.Submission{sub}, s.working...)
	s.origin = append([]model.Submission{sub}, s.origin...)
	events := []event{
		{bus.SubmissionAdded, sub},
		{bus.SubmissionsUpdated, copySubmissions(s.working)},
	}
	s.mu.Unlock()

	s.publish(events)
}

// SetLoading gates loading/empty/error rendering in consumers.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()

	s.bus.Publish(bus.LoadingChanged, loading)
}

// SetSort records the sort the current page was fetched with. No
// notification: sort changes always travel through a server re-fetch.
func (s *Store) SetSort(sort model.Sort) {
	s.mu.Lock()
	s.filter.Sort = sort
	s.mu.Unlock()
}

// ResetFilters clears the search term and restores the working set to the
// full origin set.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	s.filter.Search = ""
	s.working = copySubmissions(s.origin)
	events := []event{
		{bus.FiltersReset, nil},
		{bus.SubmissionsUpdated, copySubmissions(s.working)},
	}
	s.mu.Unlock()

	s.publish(events)
}

// Clear resets to the empty initial state. Used on teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	s.working = nil
	s.origin = nil
	s.pageInfo = nil
	s.filter = model.Filter{}
	s.loading = false
	s.currentPage = 1
	s.mu.Unlock()

	s.bus.Publish(bus.StoreCleared, nil)
}

// Submissions returns a copy of the working set.
func (s *Store) Submissions() []model.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySubmissions(s.working)
}

// FindByID looks the submission up in the working set.
func (s *Store) FindByID(id string) (model.Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.working {
		if sub.SubmissionID == id {
			return sub, true
		}
	}
	return model.Submission{}, false
}

// PageInfo returns a copy of the pagination metadata, or nil before the
// first successful fetch.
func (s *Store) PageInfo() *model.PageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageInfoCopy()
}

func (s *Store) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Filter() model.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// pageInfoCopy must be called with the lock held.
func (s *Store) pageInfoCopy() *model.PageInfo {
	if s.pageInfo == nil {
		return nil
	}
	info := *s.pageInfo
	return &info
}

func copySubmissions(subs []model.Submission) []model.Submission {
	out := make([]model.Submission, len(subs))
	copy(out, subs)
	return out
}
