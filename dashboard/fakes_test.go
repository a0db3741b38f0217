package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/crmlite/leadboard/api"
	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/model"
	"github.com/crmlite/leadboard/store"
)

// Recording view fakes. Every method appends to a call log under a shared
// mutex so handler goroutines and the test goroutine can both touch them.

type fakeViews struct {
	mu sync.Mutex

	renderedRows  [][]Row
	emptyCount    int
	loadingCount  int
	errorCount    int
	prependedRows []Row
	updatedRows   []Row

	shownPages    []pageCall
	searchResults []int
	paginationHid int

	searchValues []string

	totals, todays, weeks, months []string

	modalDetails   []Details
	modalStatuses  []model.Status
	commentLists   [][]CommentItem
	prependedItems []CommentItem
	modalShows     int
	modalHides     int

	addClientShows  int
	addClientHides  int
	addClientResets int
	clearedErrors   int
	fieldErrors     map[string]string

	successes, errors, infos, warnings []string
}

type pageCall struct {
	page, totalPages int
	hasPrev, hasNext bool
}

func newFakeViews() *fakeViews {
	return &fakeViews{fieldErrors: map[string]string{}}
}

func (f *fakeViews) views() Views {
	return Views{
		Table:      (*fakeTable)(f),
		Pagination: (*fakePagination)(f),
		Search:     (*fakeSearch)(f),
		Stats:      (*fakeStats)(f),
		Modal:      (*fakeModal)(f),
		AddClient:  (*fakeAddClient)(f),
	}
}

type fakeTable fakeViews

func (f *fakeTable) RenderRows(rows []Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renderedRows = append(f.renderedRows, rows)
}
func (f *fakeTable) RenderEmpty()   { f.mu.Lock(); defer f.mu.Unlock(); f.emptyCount++ }
func (f *fakeTable) RenderLoading() { f.mu.Lock(); defer f.mu.Unlock(); f.loadingCount++ }
func (f *fakeTable) RenderError()   { f.mu.Lock(); defer f.mu.Unlock(); f.errorCount++ }
func (f *fakeTable) PrependRow(row Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prependedRows = append(f.prependedRows, row)
}
func (f *fakeTable) UpdateRow(row Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedRows = append(f.updatedRows, row)
}

type fakePagination fakeViews

func (f *fakePagination) ShowPage(page, totalPages int, hasPrev, hasNext bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shownPages = append(f.shownPages, pageCall{page, totalPages, hasPrev, hasNext})
}
func (f *fakePagination) ShowSearchResult(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchResults = append(f.searchResults, count)
}
func (f *fakePagination) Hide() { f.mu.Lock(); defer f.mu.Unlock(); f.paginationHid++ }

type fakeSearch fakeViews

func (f *fakeSearch) SetValue(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchValues = append(f.searchValues, value)
}

type fakeStats fakeViews

func (f *fakeStats) ShowTotal(s string) { f.mu.Lock(); defer f.mu.Unlock(); f.totals = append(f.totals, s) }
func (f *fakeStats) ShowToday(s string) { f.mu.Lock(); defer f.mu.Unlock(); f.todays = append(f.todays, s) }
func (f *fakeStats) ShowWeek(s string)  { f.mu.Lock(); defer f.mu.Unlock(); f.weeks = append(f.weeks, s) }
func (f *fakeStats) ShowMonth(s string) { f.mu.Lock(); defer f.mu.Unlock(); f.months = append(f.months, s) }

type fakeModal fakeViews

func (f *fakeModal) ShowDetails(d Details) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modalDetails = append(f.modalDetails, d)
}
func (f *fakeModal) SetStatus(status model.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modalStatuses = append(f.modalStatuses, status)
}
func (f *fakeModal) ShowComments(comments []CommentItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentLists = append(f.commentLists, comments)
}
func (f *fakeModal) PrependComment(comment CommentItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prependedItems = append(f.prependedItems, comment)
}
func (f *fakeModal) Show() { f.mu.Lock(); defer f.mu.Unlock(); f.modalShows++ }
func (f *fakeModal) Hide() { f.mu.Lock(); defer f.mu.Unlock(); f.modalHides++ }

type fakeAddClient fakeViews

func (f *fakeAddClient) Show()  { f.mu.Lock(); defer f.mu.Unlock(); f.addClientShows++ }
func (f *fakeAddClient) Hide()  { f.mu.Lock(); defer f.mu.Unlock(); f.addClientHides++ }
func (f *fakeAddClient) Reset() { f.mu.Lock(); defer f.mu.Unlock(); f.addClientResets++ }
func (f *fakeAddClient) ShowFieldError(field, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldErrors[field] = message
}
func (f *fakeAddClient) ClearFieldErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearedErrors++
	f.fieldErrors = map[string]string{}
}

type fakeNotifier fakeViews

func (f *fakeNotifier) Success(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes = append(f.successes, msg)
}
func (f *fakeNotifier) Error(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, msg)
}
func (f *fakeNotifier) Info(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, msg)
}
func (f *fakeNotifier) Warning(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnings = append(f.warnings, msg)
}

func (f *fakeViews) tableRenderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.renderedRows)
}

func (f *fakeViews) lastRenderedRows(t *testing.T) []Row {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.renderedRows) == 0 {
		t.Fatal("no rows were rendered")
	}
	return f.renderedRows[len(f.renderedRows)-1]
}

func (f *fakeViews) lastShownPage(t *testing.T) pageCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.shownPages) == 0 {
		t.Fatal("no page indicator was shown")
	}
	return f.shownPages[len(f.shownPages)-1]
}

// backend is an in-memory stand-in for the admin API: 25 seeded submissions
// served page by page, plus canned comments and statistics.
type backend struct {
	mu   sync.Mutex
	subs []model.Submission

	pageRequests []*url.URL
	failPage     bool
	failStatus   bool
	addedID      string

	// holdPageNum blocks matching page fetches until holdRelease closes,
	// signalling arrival on holdArrived. Used to interleave slow responses.
	holdPageNum string
	holdArrived chan struct{}
	holdRelease chan struct{}

	srv *httptest.Server
}

func (b *backend) holdPage(page string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.holdPageNum = page
	b.holdArrived = make(chan struct{})
	b.holdRelease = make(chan struct{})
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{subs: seedSubmissions(25), addedID: "srv-new-1"}
	b.srv = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.srv.Close)
	return b
}

func seedSubmissions(n int) []model.Submission {
	subs := make([]model.Submission, 0, n)
	subs = append(subs,
		model.Submission{SubmissionID: "abc", Name: "Alice Johnson", Email: "alice@example.com", Message: "Call me", Status: model.StatusNew},
		model.Submission{SubmissionID: "def", Name: "Bob Smith", Email: "bob@test.org", Message: "Need a quote", Status: model.StatusViewed},
	)
	for i := len(subs); i < n; i++ {
		subs = append(subs, model.Submission{
			SubmissionID: fmt.Sprintf("sub-%03d", i+1),
			Name:         fmt.Sprintf("Client %02d", i+1),
			Email:        fmt.Sprintf("client%02d@example.com", i+1),
			Message:      "Generated lead",
			Status:       model.StatusNew,
		})
	}
	return subs
}

func (b *backend) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/admin/dashboard-page":
		b.handlePage(w, r)
	case "/api/v1/admin/update-submission-status":
		b.mu.Lock()
		fail := b.failStatus
		b.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "update rejected"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "/api/v1/admin/add-submissions":
		b.mu.Lock()
		id := b.addedID
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"submission_id": %q}`, id)
	case "/api/v1/admin/get-submissions-comment":
		fmt.Fprint(w, `{"data":[{"comment_id":"c1","comment":"first","admin_name":"admin","created_at":"2024-01-01T00:00:00Z"},{"comment_id":"c2","comment":"second","admin_name":"admin","created_at":"2024-01-02T00:00:00Z"}]}`)
	case "/api/v1/admin/create-submissions-comment":
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{}`)
	case "/api/v1/admin/statistics":
		fmt.Fprint(w, `{"total_submissions": 25, "today_count": 2, "this_week_count": 7, "this_month_count": 25}`)
	default:
		http.NotFound(w, r)
	}
}

func (b *backend) handlePage(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.pageRequests = append(b.pageRequests, r.URL)
	fail := b.failPage
	subs := b.subs
	held := b.holdPageNum != "" && r.URL.Query().Get("page") == b.holdPageNum
	arrived, release := b.holdArrived, b.holdRelease
	b.mu.Unlock()

	if held {
		close(arrived)
		<-release
	}

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "load failed"}`)
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(subs) {
		start = len(subs)
	}
	if end > len(subs) {
		end = len(subs)
	}

	json.NewEncoder(w).Encode(model.PageResult{
		Data:     subs[start:end],
		PageInfo: model.NewPageInfo(page, perPage, len(subs)),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	var n int
	if _, err := fmt.Sscanf(r.URL.Query().Get(key), "%d", &n); err != nil || n < 1 {
		return fallback
	}
	return n
}

func (b *backend) pageRequestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pageRequests)
}

func (b *backend) lastPageRequest(t *testing.T) *url.URL {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pageRequests) == 0 {
		t.Fatal("no dashboard-page request was made")
	}
	return b.pageRequests[len(b.pageRequests)-1]
}

type testRig struct {
	bus        *bus.Bus
	store      *store.Store
	views      *fakeViews
	notifier   *fakeNotifier
	controller *Controller
	backend    *backend
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	be := newBackend(t)
	b := bus.New()
	st := store.New(b)
	views := newFakeViews()
	notifier := (*fakeNotifier)(views)

	ctrl := NewController(context.Background(), Options{
		Bus:      b,
		Store:    st,
		API:      api.NewWithHTTPClient(be.srv.URL+"/api/v1", b, be.srv.Client()),
		Views:    views.views(),
		Notifier: notifier,
	})
	t.Cleanup(ctrl.Destroy)

	return &testRig{
		bus:        b,
		store:      st,
		views:      views,
		notifier:   notifier,
		controller: ctrl,
		backend:    be,
	}
}
