package routes

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/oauth"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/crmlite/leadboard/app"
	"github.com/crmlite/leadboard/httpx"
	"github.com/crmlite/leadboard/log"
	"github.com/crmlite/leadboard/model"
)

var validate = validator.New()

const maxPerPage = 100

// sortColumn whitelists the sortable columns; created_at kept its aliases
// from older dashboard revisions.
func sortColumn(sortBy string) string {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "", "created_at", "created", "date":
		return "created_at"
	case "name":
		return "name"
	case "email":
		return "email"
	case "status":
		return "status"
	default:
		return "created_at"
	}
}

func sortDirection(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		return "ASC"
	}
	return "DESC"
}

// DashboardPage serves one sorted page of submissions with full pagination
// metadata, recomputed from a fresh count on every call.
func DashboardPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page, _ := strconv.Atoi(q.Get("page"))
		if page < 1 {
			page = 1
		}
		perPage, _ := strconv.Atoi(q.Get("per_page"))
		if perPage < 1 {
			perPage = app.PerPage
		}
		if perPage > maxPerPage {
			perPage = maxPerPage
		}

		column := sortColumn(q.Get("sort_by"))
		direction := sortDirection(q.Get("order"))

		var total int
		err := app.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM submission`).Scan(&total)
		if err != nil {
			httpx.LogInternalError(w, "db.count_submissions", err)
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT submission_id, name, email, phone, message, status, created_at
			FROM submission
			ORDER BY `+column+` `+direction+`
			LIMIT ? OFFSET ?`,
			perPage,
			(page-1)*perPage,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}
		defer rows.Close()

		submissions := []model.Submission{}
		for rows.Next() {
			var s model.Submission
			var phone sql.NullString
			err = rows.Scan(&s.SubmissionID, &s.Name, &s.Email, &phone, &s.Message, &s.Status, &s.CreatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_submissions.scan", err)
				return
			}
			s.Phone = phone.String
			submissions = append(submissions, s)
		}

		render.JSON(w, r, model.PageResult{
			Data:     submissions,
			PageInfo: model.NewPageInfo(page, perPage, total),
		})
	}
}

// UpdateSubmissionStatus flips a submission to another status of the
// closed set.
func UpdateSubmissionStatus(app app.App) http.HandlerFunc {
	type request struct {
		SubmissionID string       `json:"submission_id"`
		Status       model.Status `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if !req.Status.Valid() {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.status", "unknown status %q", req.Status)
			return
		}

		res, err := app.ExecContext(r.Context(), `
			UPDATE submission SET status = ? WHERE submission_id = ?`,
			req.Status,
			req.SubmissionID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_status", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_status.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "update_status", req.SubmissionID)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// AddSubmission creates a lead from the admin's manual entry form.
func AddSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form model.ContactForm
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = validate.Struct(form); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		id, err := insertSubmission(app, r, form)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}

		log.Infof("admin submission saved: %s", id)
		render.JSON(w, r, map[string]any{
			"message":       "Submission saved",
			"submission_id": id,
		})
	}
}

func insertSubmission(app app.App, r *http.Request, form model.ContactForm) (string, error) {
	id := uuid.NewString()
	var phone any
	if form.Phone != "" {
		phone = form.Phone
	}
	_, err := app.ExecContext(r.Context(), `
		INSERT INTO submission (submission_id, name, email, phone, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		form.Name,
		form.Email,
		phone,
		form.Message,
		model.StatusNew,
		time.Now().UTC(),
	)
	return id, err
}

// GetSubmissionComments returns the admin comments, oldest first, in the
// wrapped {data: [...]} shape with the legacy column names.
func GetSubmissionComments(app app.App) http.HandlerFunc {
	type request struct {
		SubmissionsID string `json:"submissions_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT id, comment, author, created_at
			FROM admin_comment
			WHERE submission_id = ?
			ORDER BY created_at ASC`,
			req.SubmissionsID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_comments", err)
			return
		}
		defer rows.Close()

		comments := []map[string]any{}
		for rows.Next() {
			var id, text, author string
			var createdAt time.Time
			err = rows.Scan(&id, &text, &author, &createdAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_comments.scan", err)
				return
			}
			comments = append(comments, map[string]any{
				"comment_id": id,
				"comment":    text,
				"admin_name": author,
				"created_at": createdAt.Format(time.RFC3339),
			})
		}

		render.JSON(w, r, map[string]any{"data": comments})
	}
}

// CreateSubmissionComment appends a comment authored by the logged-in
// admin. Comments are append-only.
func CreateSubmissionComment(app app.App) http.HandlerFunc {
	type request struct {
		SubmissionsID string `json:"submissions_id"`
		Text          string `json:"text"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.text")
			return
		}

		var exists int
		err = app.QueryRowContext(r.Context(),
			`SELECT COUNT(*) FROM submission WHERE submission_id = ?`,
			req.SubmissionsID,
		).Scan(&exists)
		if err != nil {
			httpx.LogInternalError(w, "db.find_submission", err)
			return
		}
		if exists == 0 {
			httpx.LogNotFound(w, "create_comment", req.SubmissionsID)
			return
		}

		author := "admin"
		if credential, ok := r.Context().Value(oauth.CredentialContext).(string); ok && credential != "" {
			author = credential
		}

		id := uuid.NewString()
		createdAt := time.Now().UTC()
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO admin_comment (id, submission_id, author, comment, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			id,
			req.SubmissionsID,
			author,
			strings.TrimSpace(req.Text),
			createdAt,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_comment", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"comment_id": id,
			"comment":    strings.TrimSpace(req.Text),
			"admin_name": author,
			"created_at": createdAt.Format(time.RFC3339),
		})
	}
}

// Statistics serves the aggregate counters for the stats panel.
func Statistics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stats model.Stats
		err := app.QueryRowContext(r.Context(), `
			SELECT
				COUNT(*),
				COUNT(CASE WHEN datetime(created_at) >= datetime('now', 'start of day') THEN 1 END),
				COUNT(CASE WHEN datetime(created_at) >= datetime('now', '-6 days', 'start of day') THEN 1 END),
				COUNT(CASE WHEN datetime(created_at) >= datetime('now', 'start of month') THEN 1 END)
			FROM submission`,
		).Scan(&stats.TotalSubmissions, &stats.TodayCount, &stats.ThisWeekCount, &stats.ThisMonthCount)
		if err != nil {
			httpx.LogInternalError(w, "db.get_statistics", err)
			return
		}

		render.JSON(w, r, stats)
	}
}
