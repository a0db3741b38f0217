package dashboard

import (
	"github.com/crmlite/leadboard/log"
	"github.com/crmlite/leadboard/model"
)

// The view interfaces are the render targets the presentation components
// draw on. A browser front end, a TUI, or a test fake can implement them;
// component logic never touches markup and stays testable headlessly.

// Row is a display-ready table line.
type Row struct {
	ID          string
	ShortID     string
	Name        string
	Initials    string
	Email       string
	Phone       string
	Date        string
	Status      model.Status
	StatusLabel string
}

type TableView interface {
	RenderRows(rows []Row)
	RenderEmpty()
	RenderLoading()
	RenderError()
	PrependRow(row Row)
	UpdateRow(row Row)
}

type PaginationView interface {
	// ShowPage renders "page N of M" with prev/next enabled per the flags.
	ShowPage(page, totalPages int, hasPrev, hasNext bool)
	// ShowSearchResult replaces the page indicator with a hit count and
	// disables both controls.
	ShowSearchResult(count int)
	Hide()
}

type SearchView interface {
	SetValue(value string)
}

type StatsView interface {
	ShowTotal(formatted string)
	ShowToday(formatted string)
	ShowWeek(formatted string)
	ShowMonth(formatted string)
}

// Details is the display-ready submission detail for the modal.
type Details struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Date        string
	Message     string
	Status      model.Status
	StatusLabel string
}

// CommentItem is a display-ready admin comment, newest first.
type CommentItem struct {
	ID     string
	Text   string
	Author string
	Date   string
}

type ModalView interface {
	ShowDetails(d Details)
	SetStatus(status model.Status)
	ShowComments(comments []CommentItem)
	PrependComment(comment CommentItem)
	Show()
	Hide()
}

type AddClientView interface {
	Show()
	Hide()
	Reset()
	ShowFieldError(field, message string)
	ClearFieldErrors()
}

// Views bundles the render targets injected into a controller.
type Views struct {
	Table      TableView
	Pagination PaginationView
	Search     SearchView
	Stats      StatsView
	Modal      ModalView
	AddClient  AddClientView
}

// Notifier surfaces user-facing toasts. Rendering is the host's business.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
	Warning(msg string)
}

// LogNotifier routes notifications to the log. It is the default when no
// notifier is injected.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { log.Info(msg) }
func (LogNotifier) Error(msg string)   { log.Error(msg) }
func (LogNotifier) Info(msg string)    { log.Info(msg) }
func (LogNotifier) Warning(msg string) { log.Warn(msg) }
