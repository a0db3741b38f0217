package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/model"
)

func testSubmissions() []model.Submission {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return []model.Submission{
		{SubmissionID: "a1b2c3d4-0001", Name: "Alice Johnson", Email: "alice@example.com", Message: "Hello", Status: model.StatusNew, CreatedAt: created},
		{SubmissionID: "a1b2c3d4-0002", Name: "Bob Smith", Email: "bob@test.org", Message: "Hi", Status: model.StatusViewed, CreatedAt: created},
		{SubmissionID: "a1b2c3d4-0003", Name: "Carol Jones", Email: "carol@example.com", Message: "Hey", Status: model.StatusNew, CreatedAt: created},
	}
}

func pageOf(subs []model.Submission) model.PageResult {
	return model.PageResult{
		Data:     subs,
		PageInfo: model.NewPageInfo(1, 10, len(subs)),
	}
}

// recorder collects every event published on the given topics.
type recorder struct {
	events []recorded
}

type recorded struct {
	topic   bus.Topic
	payload any
}

func record(b *bus.Bus, topics ...bus.Topic) *recorder {
	rec := &recorder{}
	for _, topic := range topics {
		topic := topic
		b.Subscribe(topic, func(payload any) {
			rec.events = append(rec.events, recorded{topic, payload})
		})
	}
	return rec
}

func (r *recorder) topics() []bus.Topic {
	out := make([]bus.Topic, len(r.events))
	for i, e := range r.events {
		out[i] = e.topic
	}
	return out
}

func TestReplaceStateInstallsWorkingAndOriginSets(t *testing.T) {
	b := bus.New()
	s := New(b)
	rec := record(b, bus.SubmissionsUpdated, bus.PaginationUpdated)

	subs := testSubmissions()
	s.ReplaceState(pageOf(subs))

	if got := s.Submissions(); !reflect.DeepEqual(got, subs) {
		t.Errorf("working set mismatch: got %v", got)
	}
	if got := s.Filter().Search; got != "" {
		t.Errorf("expected search reset to empty, got %q", got)
	}

	want := []bus.Topic{bus.SubmissionsUpdated, bus.PaginationUpdated}
	if !reflect.DeepEqual(rec.topics(), want) {
		t.Errorf("expected events %v, got %v", want, rec.topics())
	}

	info := s.PageInfo()
	if info == nil {
		t.Fatal("expected pagination metadata after ReplaceState")
	}
	if info.TotalCount != 3 || info.Page != 1 {
		t.Errorf("unexpected page info: %+v", info)
	}
}

func TestReplaceStateResetsActiveSearch(t *testing.T) {
	b := bus.New()
	s := New(b)

	s.ReplaceState(pageOf(testSubmissions()))
	s.ApplySearchFilter("alice")
	if len(s.Submissions()) != 1 {
		t.Fatalf("precondition: filter should leave 1 submission")
	}

	s.ReplaceState(pageOf(testSubmissions()))
	if got := len(s.Submissions()); got != 3 {
		t.Errorf("expected full page after ReplaceState, got %d", got)
	}
	if s.Filter().Search != "" {
		t.Errorf("expected empty search after ReplaceState, got %q", s.Filter().Search)
	}
}

func TestPaginationInvariants(t *testing.T) {
	cases := []struct {
		page, perPage, total     int
		wantTotalPages           int
		wantHasPrev, wantHasNext bool
	}{
		{1, 10, 25, 3, false, true},
		{2, 10, 25, 3, true, true},
		{3, 10, 25, 3, true, false},
		{1, 10, 0, 0, false, false},
		{1, 10, 10, 1, false, false},
	}

	for _, tc := range cases {
		info := model.NewPageInfo(tc.page, tc.perPage, tc.total)
		if info.TotalPages != tc.wantTotalPages {
			t.Errorf("page %d/%d of %d: total_pages = %d, want %d", tc.page, tc.perPage, tc.total, info.TotalPages, tc.wantTotalPages)
		}
		if info.HasPrev != tc.wantHasPrev {
			t.Errorf("page %d of %d: has_prev = %v, want %v", tc.page, tc.total, info.HasPrev, tc.wantHasPrev)
		}
		if info.HasNext != tc.wantHasNext {
			t.Errorf("page %d of %d: has_next = %v, want %v", tc.page, tc.total, info.HasNext, tc.wantHasNext)
		}
	}
}

func TestApplySearchFilterMatchesNameEmailAndID(t *testing.T) {
	cases := []struct {
		term string
		want []string
	}{
		{"alice", []string{"a1b2c3d4-0001"}},
		{"EXAMPLE.COM", []string{"a1b2c3d4-0001", "a1b2c3d4-0003"}},
		{"0002", []string{"a1b2c3d4-0002"}},
		{"jo", []string{"a1b2c3d4-0001", "a1b2c3d4-0003"}},
		{"zzz-no-match", []string{}},
	}

	for _, tc := range cases {
		b := bus.New()
		s := New(b)
		s.ReplaceState(pageOf(testSubmissions()))
		rec := record(b, bus.SubmissionsFiltered)

		s.ApplySearchFilter(tc.term)

		got := []string{}
		for _, sub := range s.Submissions() {
			got = append(got, sub.SubmissionID)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("term %q: got ids %v, want %v", tc.term, got, tc.want)
		}

		if len(rec.events) != 1 {
			t.Errorf("term %q: expected exactly one submissions:filtered, got %d events", tc.term, len(rec.events))
		}
	}
}

func TestApplySearchFilterIsIdempotent(t *testing.T) {
	b := bus.New()
	s := New(b)
	s.ReplaceState(pageOf(testSubmissions()))

	s.ApplySearchFilter("jo")
	first := s.Submissions()
	s.ApplySearchFilter("jo")
	second := s.Submissions()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("applying the same term twice changed the result: %v vs %v", first, second)
	}
}

func TestApplySearchFilterEmptyTermRestoresOriginSet(t *testing.T) {
	b := bus.New()
	s := New(b)
	s.ReplaceState(pageOf(testSubmissions()))
	s.ApplySearchFilter("alice")

	rec := record(b, bus.SubmissionsUpdated, bus.SubmissionsFiltered)
	s.ApplySearchFilter("   ")

	if got := len(s.Submissions()); got != 3 {
		t.Errorf("expected full origin set restored, got %d submissions", got)
	}
	want := []bus.Topic{bus.SubmissionsUpdated}
	if !reflect.DeepEqual(rec.topics(), want) {
		t.Errorf("expected %v, got %v", want, rec.topics())
	}
}

func TestUpdateSubmissionStatusKnownID(t *testing.T) {
	b := bus.New()
	s := New(b)
	s.ReplaceState(pageOf(testSubmissions()))
	rec := record(b, bus.SubmissionUpdated)

	s.UpdateSubmissionStatus("a1b2c3d4-0002", model.StatusCompleted)

	if len(rec.events) != 1 {
		t.Fatalf("expected exactly one submission:updated, got %d", len(rec.events))
	}
	updated := rec.events[0].payload.(model.Submission)
	if updated.Status != model.StatusCompleted {
		t.Errorf("event status = %q, want %q", updated.Status, model.StatusCompleted)
	}

	sub, ok := s.FindByID("a1b2c3d4-0002")
	if !ok || sub.Status != model.StatusCompleted {
		t.Errorf("store status = %q, want %q", sub.Status, model.StatusCompleted)
	}
}

func TestUpdateSubmissionStatusUnknownIDIsNoop(t *testing.T) {
	b := bus.New()
	s := New(b)
	s.ReplaceState(pageOf(testSubmissions()))
	rec := record(b, bus.SubmissionUpdated, bus.SubmissionsUpdated)

	s.UpdateSubmissionStatus("missing-id", model.StatusCompleted)

	if len(rec.events) != 0 {
		t.Errorf("expected no events for unknown id, got %v", rec.topics())
	}
	for _, sub := range s.Submissions() {
		if sub.Status == model.StatusCompleted {
			t.Errorf("no submission should have changed, but %s did", sub.SubmissionID)
		}
	}
}

func TestUpdateSubmissionStatusSurvivesFilterRestore(t *testing.T) {
	b := bus.New()
	s := New(b)
	s.ReplaceState(pageOf(testSubmissions()))

	// Mutation must land in both sets: restoring the filter afterwards
	// must not resurrect the old status.
	s.ApplySearchFilter("bob")
	s.UpdateSubmissionStatus("a1b2c3d4-0002", model.StatusInProgress)
	s.ApplySearchFilter("")

	sub, ok := s.FindByID("a1b2c3d4-0002")
	if !ok || sub.Status != model.StatusInProgress {
		t.Errorf("status lost after filter restore: got %q", sub.Status)
	}
}

func TestAddSubmissionPrependsToBothSets(t *testing.T) {
	b := bus.New()
	s := New(b)
	s.ReplaceState(pageOf(testSubmissions()))
	rec := record(b, bus.SubmissionAdded, bus.SubmissionsUpdated)

	newSub := model.Submission{
		SubmissionID: "fresh-0001",
		Name:         "Dave New",
		Email:        "dave@example.com",
		Message:      "Just created",
		Status:       model.StatusNew,
		CreatedAt:    time.Now(),
	}
	s.AddSubmission(newSub)

	subs := s.Submissions()
	if len(subs) != 4 {
		t.Fatalf("expected 4 submissions, got %d", len(subs))
	}
	if !reflect.DeepEqual(subs[0], newSub) {
		t.Errorf("expected new submission at index 0, got %+v", subs[0])
	}

	found, ok := s.FindByID("fresh-0001")
	if !ok || !reflect.DeepEqual(found, newSub) {
		t.Errorf("FindByID returned %+v, want %+v", found, newSub)
	}

	want := []bus.Topic{bus.SubmissionAdded, bus.SubmissionsUpdated}
	if !reflect.DeepEqual(rec.topics(), want) {
		t.Errorf("expected events %v, got %v", want, rec.topics())
	}

	// The origin set got it too: filtering for it must succeed.
	s.ApplySearchFilter("fresh-0001")
	if got := len(s.Submissions()); got != 1 {
		t.Errorf("expected new submission in origin set, filter found %d", got)
	}
}

func TestResetFiltersRestoresOriginAndEmitsInOrder(t *testing.T) {
	b := bus.New()
	s := New(b)
	s.ReplaceState(pageOf(testSubmissions()))
	s.ApplySearchFilter("alice")
	rec := record(b, bus.FiltersReset, bus.SubmissionsUpdated)

	s.ResetFilters()

	if got := len(s.Submissions()); got != 3 {
		t.Errorf("expected origin set restored, got %d", got)
	}
	want := []bus.Topic{bus.FiltersReset, bus.SubmissionsUpdated}
	if !reflect.DeepEqual(rec.topics(), want) {
		t.Errorf("expected events %v, got %v", want, rec.topics())
	}
}

func TestSetLoadingEmits(t *testing.T) {
	b := bus.New()
	s := New(b)
	rec := record(b, bus.LoadingChanged)

	s.SetLoading(true)
	s.SetLoading(false)

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 loading:changed events, got %d", len(rec.events))
	}
	if rec.events[0].payload != true || rec.events[1].payload != false {
		t.Errorf("unexpected payloads: %v", rec.events)
	}
	if s.Loading() {
		t.Error("expected loading false after last call")
	}
}

func TestClearResetsToInitialState(t *testing.T) {
	b := bus.New()
	s := New(b)
	s.ReplaceState(pageOf(testSubmissions()))
	rec := record(b, bus.StoreCleared)

	s.Clear()

	if len(s.Submissions()) != 0 {
		t.Error("expected empty working set after Clear")
	}
	if s.PageInfo() != nil {
		t.Error("expected nil page info after Clear")
	}
	if s.CurrentPage() != 1 {
		t.Errorf("expected current page 1, got %d", s.CurrentPage())
	}
	if len(rec.events) != 1 {
		t.Errorf("expected one store:cleared event, got %d", len(rec.events))
	}
}

func TestEventPayloadsAreCopies(t *testing.T) {
	b := bus.New()
	s := New(b)

	var received []model.Submission
	b.Subscribe(bus.SubmissionsUpdated, func(payload any) {
		received = payload.([]model.Submission)
	})
	s.ReplaceState(pageOf(testSubmissions()))

	// Mutating the payload must not leak into the store.
	received[0].Status = model.StatusRejected
	sub, _ := s.FindByID("a1b2c3d4-0001")
	if sub.Status == model.StatusRejected {
		t.Error("mutating an event payload changed store state")
	}
}
