package bus

import "github.com/crmlite/leadboard/model"

// The closed set of topics. Payload types are part of the contract: a
// subscriber may type-assert without a fallback arm.
const (
	// Store state changes.
	SubmissionsUpdated  Topic = "submissions:updated"  // []model.Submission
	SubmissionsFiltered Topic = "submissions:filtered" // []model.Submission
	PaginationUpdated   Topic = "pagination:updated"   // *model.PageInfo
	LoadingChanged      Topic = "loading:changed"      // bool
	SubmissionAdded     Topic = "submission:added"     // model.Submission
	SubmissionUpdated   Topic = "submission:updated"   // model.Submission
	FiltersReset        Topic = "filters:reset"        // nil
	StoreCleared        Topic = "store:cleared"        // nil

	// Component intents.
	SubmissionView         Topic = "submission:view"          // string (submission id)
	SubmissionStatusChange Topic = "submission:status-change" // StatusChange
	SearchQuery            Topic = "search:query"             // Query
	PaginationPrev         Topic = "pagination:prev"          // int (requested page)
	PaginationNext         Topic = "pagination:next"          // int (requested page)
	TableSort              Topic = "table:sort"               // model.Sort
	ClientSave             Topic = "client:save"              // model.ContactForm
	CommentAdd             Topic = "comment:add"              // CommentIntent

	// Controller feedback.
	ModalStatusReverted Topic = "modal:status-reverted" // StatusReverted
	APIError            Topic = "api:error"             // RequestError
)

// StatusChange is emitted by the submission modal when the admin picks a new
// status. OriginalStatus is what the control showed before the change, used
// to revert the modal when the server rejects the update.
type StatusChange struct {
	SubmissionID   string
	NewStatus      model.Status
	OriginalStatus model.Status
}

// Query is emitted by the search box. Immediate means debounce was bypassed
// (explicit submit); IsEmpty is precomputed from the trimmed term.
type Query struct {
	Term      string
	Immediate bool
	IsEmpty   bool
}

// CommentIntent is emitted by the submission modal's comment form.
type CommentIntent struct {
	SubmissionID string
	Text         string
}

// StatusReverted tells the modal to roll its status control back after a
// failed update. The store never held the rejected value.
type StatusReverted struct {
	SubmissionID   string
	OriginalStatus model.Status
}

// RequestError is published once per failed API call.
type RequestError struct {
	Endpoint string
	Err      error
}
