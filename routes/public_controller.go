package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/crmlite/leadboard/app"
	"github.com/crmlite/leadboard/httpx"
	"github.com/crmlite/leadboard/log"
	"github.com/crmlite/leadboard/model"
	"github.com/crmlite/leadboard/routes/middlewares"
)

// CSRFToken issues a per-session single-use token for the public contact
// form. The session rides in a cookie; the token goes back in the body and
// must return in the X-CSRF-Token header.
func CSRFToken(csrf *middlewares.CSRFService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middlewares.SessionID(r)
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Path:     "/",
				Name:     middlewares.SessionCookie,
				Value:    sessionID,
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
		}

		token := csrf.CreateToken(sessionID)
		render.JSON(w, r, map[string]any{
			"token":      token,
			"expires_in": int(csrf.TTL() / time.Second),
		})
	}
}

// ContactSubmission accepts a public contact-form lead. CSRF validation
// already happened in middleware; this handler only validates the fields.
func ContactSubmission(app app.App) http.HandlerFunc {
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

		log.Infof("contact submission saved: %s", id)
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message":       "Message sent",
			"submission_id": id,
		})
	}
}
