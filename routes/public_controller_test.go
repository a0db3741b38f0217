package routes

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestContactSubmissionValidates(t *testing.T) {
	a := newTestApp(t)

	submit := func(body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/contact-submissions", strings.NewReader(body))
		w := httptest.NewRecorder()
		ContactSubmission(a)(w, r)
		return w
	}

	w := submit(`{"name": "Eve Adams", "email": "eve@example.com", "message": "Please get in touch with me."}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("valid form: code = %d, body %s", w.Code, w.Body)
	}
	var resp struct {
		SubmissionID string `json:"submission_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.SubmissionID == "" {
		t.Fatalf("missing submission_id in %s", w.Body)
	}

	var count int
	if err := a.QueryRow(`SELECT COUNT(*) FROM submission WHERE submission_id = ?`, resp.SubmissionID).Scan(&count); err != nil || count != 1 {
		t.Errorf("submission not persisted (count=%d, err=%v)", count, err)
	}

	if w := submit(`{"name": "Eve", "email": "nope", "message": "Please get in touch with me."}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad email: code = %d, want 400", w.Code)
	}
	if w := submit(`{"name": "Eve Adams", "email": "eve@example.com", "message": "short"}`); w.Code != http.StatusBadRequest {
		t.Errorf("short message: code = %d, want 400", w.Code)
	}
}

// TestContactFlowWithCSRF drives the wired router end to end: fetch a
// token, submit under it, and verify the token is consumed.
func TestContactFlowWithCSRF(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(Wire(a))
	defer srv.Close()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(srv.URL + "/api/v1/csrf-token")
	if err != nil {
		t.Fatalf("csrf-token: %v", err)
	}
	var tokenResp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	resp.Body.Close()
	if tokenResp.Token == "" || tokenResp.ExpiresIn <= 0 {
		t.Fatalf("unusable token response: %+v", tokenResp)
	}

	submit := func(token string) int {
		body := `{"name": "Eve Adams", "email": "eve@example.com", "message": "Please get in touch with me."}`
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/contact-submissions", strings.NewReader(body))
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("X-CSRF-Token", token)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("contact-submissions: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := submit(tokenResp.Token); code != http.StatusCreated {
		t.Fatalf("valid token: code = %d, want 201", code)
	}
	if code := submit(tokenResp.Token); code != http.StatusForbidden {
		t.Errorf("replayed token: code = %d, want 403", code)
	}
	if code := submit(""); code != http.StatusForbidden {
		t.Errorf("missing token: code = %d, want 403", code)
	}
}
