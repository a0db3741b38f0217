package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/crmlite/leadboard/api"
	"github.com/crmlite/leadboard/bus"
	"github.com/crmlite/leadboard/log"
	"github.com/crmlite/leadboard/model"
	"github.com/crmlite/leadboard/store"
)

// DefaultPageSize is the fixed page size used for server fetches.
const DefaultPageSize = 10

// Options carries everything a Controller depends on. Bus, Store, API and
// Views are required; Notifier defaults to LogNotifier and PerPage to
// DefaultPageSize.
type Options struct {
	Bus      *bus.Bus
	Store    *store.Store
	API      *api.Client
	Views    Views
	Notifier Notifier
	PerPage  int
	// SearchDelay tunes the search box debounce; zero means the default.
	SearchDelay time.Duration
}

// Controller is the only component allowed to call both the API client and
// the store. It wires store events to component render calls, component
// intents to store/API calls, and owns the sort/paging/search policy.
type Controller struct {
	ctx      context.Context
	bus      *bus.Bus
	store    *store.Store
	api      *api.Client
	notifier Notifier
	perPage  int

	table      *Table
	pagination *Pagination
	search     *SearchBox
	stats      *StatsPanel
	modal      *SubmissionModal
	addClient  *AddClientModal

	subs []*bus.Subscription

	// fetchSeq fences concurrent page loads: only the newest issued load
	// may commit its response. commitMu makes the staleness re-check and
	// the store commit one step, so a response that passed the check
	// cannot be overtaken before it lands.
	fetchSeq atomic.Uint64
	commitMu sync.Mutex

	mu        sync.Mutex
	sort      model.Sort
	destroyed bool
}

// NewController builds the controller and its components. Call Init to
// subscribe and load the first page.
func NewController(ctx context.Context, opts Options) *Controller {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	return &Controller{
		ctx:      ctx,
		bus:      opts.Bus,
		store:    opts.Store,
		api:      opts.API,
		notifier: notifier,
		perPage:  perPage,

		table:      NewTable(opts.Bus, opts.Views.Table),
		pagination: NewPagination(opts.Bus, opts.Views.Pagination),
		search:     NewSearchBox(opts.Bus, opts.Views.Search, opts.SearchDelay),
		stats:      NewStatsPanel(opts.Views.Stats),
		modal:      NewSubmissionModal(opts.Bus, opts.Views.Modal),
		addClient:  NewAddClientModal(opts.Bus, opts.Views.AddClient),
	}
}

// Init subscribes to every topic the controller orchestrates and loads the
// first page plus the stats panel. A failed initial load is reported
// through the usual error path and returned.
func (c *Controller) Init() error {
	c.bindEvents()

	if stats, err := c.api.FetchStats(c.ctx); err == nil {
		c.stats.Update(stats)
	}

	return c.loadData(1)
}

func (c *Controller) bindEvents() {
	subscribe := func(topic bus.Topic, h bus.Handler) {
		c.subs = append(c.subs, c.bus.Subscribe(topic, h))
	}

	// Store state changes.
	subscribe(bus.SubmissionsUpdated, c.onSubmissionsUpdated)
	subscribe(bus.SubmissionsFiltered, c.onSubmissionsFiltered)
	subscribe(bus.PaginationUpdated, c.onPaginationUpdated)
	subscribe(bus.LoadingChanged, c.onLoadingChanged)
	subscribe(bus.SubmissionAdded, c.onSubmissionAdded)
	subscribe(bus.SubmissionUpdated, c.onSubmissionUpdated)

	// Component intents.
	subscribe(bus.PaginationPrev, c.onPageChange)
	subscribe(bus.PaginationNext, c.onPageChange)
	subscribe(bus.SubmissionView, c.onSubmissionView)
	subscribe(bus.SubmissionStatusChange, c.onStatusChange)
	subscribe(bus.SearchQuery, c.onSearch)
	subscribe(bus.TableSort, c.onSort)
	subscribe(bus.ClientSave, c.onClientSave)
	subscribe(bus.CommentAdd, c.onCommentAdd)

	// API failures.
	subscribe(bus.APIError, c.onAPIError)
}

// loadData fetches one server page with the current sort and commits it to
// the store, unless a newer load was issued meanwhile.
func (c *Controller) loadData(page int) error {
	seq := c.fetchSeq.Add(1)

	c.mu.Lock()
	sort := c.sort
	c.mu.Unlock()

	c.store.SetLoading(true)

	result, err := c.api.FetchSubmissions(c.ctx, page, c.perPage, sort)
	return c.commitLoad(seq, page, result, err, sort)
}

// commitLoad installs a fetched page unless a newer load was issued
// meanwhile. Check and commit hold one lock: checking first and committing
// later would let a newer load slip in between and lose to the stale page.
func (c *Controller) commitLoad(seq uint64, page int, result model.PageResult, err error, sort model.Sort) error {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	if c.fetchSeq.Load() != seq {
		// A newer load owns the screen now; drop this response either way.
		log.Debugf("dashboard.load: dropping stale response for page %d", page)
		return nil
	}

	if err != nil {
		c.store.SetLoading(false)
		c.table.RenderError()
		return err
	}

	c.store.ReplaceState(result)
	c.store.SetSort(sort)
	c.store.SetLoading(false)
	return nil
}

// Store event handlers.

func (c *Controller) onSubmissionsUpdated(payload any) {
	if subs, ok := payload.([]model.Submission); ok {
		c.table.Render(subs)
	}
}

func (c *Controller) onSubmissionsFiltered(payload any) {
	if subs, ok := payload.([]model.Submission); ok {
		c.table.Render(subs)
		c.pagination.ShowSearchResult(len(subs))
	}
}

func (c *Controller) onPaginationUpdated(payload any) {
	info, ok := payload.(*model.PageInfo)
	if !ok {
		return
	}
	c.pagination.Update(info)
	c.stats.UpdateFromPageInfo(info)
}

func (c *Controller) onLoadingChanged(payload any) {
	if loading, ok := payload.(bool); ok && loading {
		c.table.RenderLoading()
	}
}

func (c *Controller) onSubmissionAdded(payload any) {
	if sub, ok := payload.(model.Submission); ok {
		c.table.AddRow(sub)
		c.stats.IncrementTotal()
		c.stats.IncrementToday()
	}
}

func (c *Controller) onSubmissionUpdated(payload any) {
	if sub, ok := payload.(model.Submission); ok {
		c.table.UpdateRow(sub)
		c.modal.Update(sub)
	}
}

// Component intent handlers.

// onPageChange implements the paging policy: search state and server paging
// never combine, so an active search is cleared before the page is loaded.
func (c *Controller) onPageChange(payload any) {
	page, ok := payload.(int)
	if !ok {
		return
	}

	if c.store.Filter().Search != "" {
		c.search.Reset()
		c.store.ResetFilters()
	}
	_ = c.loadData(page)
}

func (c *Controller) onSubmissionView(payload any) {
	id, ok := payload.(string)
	if !ok {
		return
	}
	sub, found := c.store.FindByID(id)
	if !found {
		return
	}
	c.modal.Open(sub)

	comments, err := c.api.FetchComments(c.ctx, id)
	if err != nil {
		// Non-fatal: the modal stays usable with an empty list.
		c.modal.RenderComments(nil)
		return
	}
	c.modal.RenderComments(newestFirst(comments))
}

// onStatusChange commits a status change only after the server confirmed
// it. On failure the store is untouched and the modal rolls back to the
// pre-change value.
func (c *Controller) onStatusChange(payload any) {
	change, ok := payload.(bus.StatusChange)
	if !ok {
		return
	}

	err := c.api.UpdateSubmissionStatus(c.ctx, change.SubmissionID, change.NewStatus)
	if err != nil {
		c.bus.Publish(bus.ModalStatusReverted, bus.StatusReverted{
			SubmissionID:   change.SubmissionID,
			OriginalStatus: change.OriginalStatus,
		})
		c.notifier.Error("Could not update the status")
		return
	}

	c.store.UpdateSubmissionStatus(change.SubmissionID, change.NewStatus)
	c.notifier.Success("Status updated")
}

// onSearch: a non-empty term filters the loaded page client-side; an empty
// term means "show everything", which for a single-page origin set is a
// fresh fetch of page 1 with the current sort.
func (c *Controller) onSearch(payload any) {
	query, ok := payload.(bus.Query)
	if !ok {
		return
	}

	if query.IsEmpty {
		_ = c.loadData(1)
		return
	}
	c.store.ApplySearchFilter(query.Term)
}

// onSort re-fetches page 1 with the new order and keeps it as the default
// for subsequent loads.
func (c *Controller) onSort(payload any) {
	sort, ok := payload.(model.Sort)
	if !ok {
		return
	}

	c.mu.Lock()
	c.sort = sort
	c.mu.Unlock()

	_ = c.loadData(1)
}

// onClientSave persists a manually entered lead, then inserts a locally
// synthesized record rather than waiting for a server round-trip. The
// client clock stamps created_at; the server's copy may order slightly
// differently until the next fetch, which is accepted.
func (c *Controller) onClientSave(payload any) {
	form, ok := payload.(model.ContactForm)
	if !ok {
		return
	}

	id, err := c.api.AddSubmission(c.ctx, form)
	if err != nil || id == "" {
		c.addClient.OnSaveError(err)
		return
	}

	c.store.AddSubmission(model.Submission{
		SubmissionID: id,
		Name:         form.Name,
		Email:        form.Email,
		Phone:        form.Phone,
		Message:      form.Message,
		Status:       model.StatusNew,
		CreatedAt:    time.Now(),
	})
	c.addClient.OnSaveSuccess()
	c.notifier.Success("Client added")
}

// onCommentAdd posts the comment and prepends it right away, generating a
// temporary id when the server response does not carry one.
func (c *Controller) onCommentAdd(payload any) {
	intent, ok := payload.(bus.CommentIntent)
	if !ok {
		return
	}

	created, err := c.api.AddComment(c.ctx, intent.SubmissionID, intent.Text)
	if err != nil {
		return
	}

	if created.Text == "" {
		created.Text = intent.Text
	}
	if created.ID == "" {
		created.ID = "tmp-" + uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	c.modal.PrependComment(created)
}

// onAPIError maps failed endpoints to recovery UI; everything unmapped
// falls back to a generic notification.
func (c *Controller) onAPIError(payload any) {
	reqErr, ok := payload.(bus.RequestError)
	if !ok {
		return
	}
	log.Errorf("dashboard.api: %s: %v", reqErr.Endpoint, reqErr.Err)

	switch reqErr.Endpoint {
	case api.EndpointDashboardPage:
		c.table.RenderError()
		c.notifier.Error("Could not load submissions")
	default:
		c.notifier.Error("Request to the server failed")
	}
}

// Public controls for the embedding UI.

func (c *Controller) Refresh() error {
	return c.loadData(c.store.CurrentPage())
}

func (c *Controller) GoToPage(page int) error {
	return c.loadData(page)
}

func (c *Controller) OpenAddClientModal() {
	c.addClient.Open()
}

func (c *Controller) ClearSearch() {
	c.search.Clear()
}

func (c *Controller) Submissions() []model.Submission {
	return c.store.Submissions()
}

func (c *Controller) Stats() model.Stats {
	return c.stats.Stats()
}

// Component accessors for drivers and tests.

func (c *Controller) Table() *Table              { return c.table }
func (c *Controller) Pagination() *Pagination    { return c.pagination }
func (c *Controller) SearchBox() *SearchBox      { return c.search }
func (c *Controller) StatsPanel() *StatsPanel    { return c.stats }
func (c *Controller) Modal() *SubmissionModal    { return c.modal }
func (c *Controller) AddClient() *AddClientModal { return c.addClient }

// Destroy releases every bus subscription, destroys each owned component
// and clears the store. Destroying twice is a safe no-op.
func (c *Controller) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.mu.Unlock()

	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	c.subs = nil

	c.table.Destroy()
	c.pagination.Destroy()
	c.search.Destroy()
	c.stats.Destroy()
	c.modal.Destroy()
	c.addClient.Destroy()

	c.store.Clear()
}

func newestFirst(comments []model.Comment) []model.Comment {
	out := make([]model.Comment, len(comments))
	for i, c := range comments {
		out[len(comments)-1-i] = c
	}
	return out
}
