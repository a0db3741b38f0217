package model

import "time"

// Status is the closed set of submission review states.
type Status string

const (
	StatusNew        Status = "new"
	StatusViewed     Status = "viewed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// StatusLabels maps wire statuses to display text.
var StatusLabels = map[Status]string{
	StatusNew:        "New",
	StatusViewed:     "Viewed",
	StatusInProgress: "In progress",
	StatusCompleted:  "Completed",
	StatusRejected:   "Rejected",
}

func (s Status) Valid() bool {
	_, ok := StatusLabels[s]
	return ok
}

func (s Status) Label() string {
	if label, ok := StatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Submission is a stored contact-form lead. All fields except Status are
// immutable after creation.
type Submission struct {
	SubmissionID string    `json:"submission_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Message      string    `json:"message"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Comment is the single internal shape every historical comments response
// is normalized to.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// PageInfo is recomputed wholesale on every successful fetch, never
// incrementally.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`

	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// NewPageInfo derives the full metadata from a total count.
func NewPageInfo(page, perPage, totalCount int) PageInfo {
	totalPages := (totalCount + perPage - 1) / perPage
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalCount: totalCount,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// PageResult is the wire shape of a dashboard page response.
type PageResult struct {
	Data []Submission `json:"data"`
	PageInfo
}

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Sort is a column/direction pair. The zero value means server default
// (created_at descending).
type Sort struct {
	By    string `json:"sort_by,omitempty"`
	Order Order  `json:"order,omitempty"`
}

func (s Sort) IsZero() bool {
	return s.By == "" && s.Order == ""
}

// Filter is the client-side filter state. A non-empty Search means the
// working set is a filtered derivative of the origin set and pagination
// is not meaningful.
type Filter struct {
	Search string
	Sort   Sort
}

// Stats mirrors the statistics endpoint payload.
type Stats struct {
	TotalSubmissions int `json:"total_submissions"`
	TodayCount       int `json:"today_count"`
	ThisWeekCount    int `json:"this_week_count"`
	ThisMonthCount   int `json:"this_month_count"`
}

// ContactForm is the payload of both the public contact endpoint and the
// admin add-submissions endpoint.
type ContactForm struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Message string `json:"message" validate:"required,min=10,max=1000"`
}
