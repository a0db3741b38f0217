package middlewares

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/crmlite/leadboard/httpx"
	"github.com/crmlite/leadboard/log"
)

// SessionCookie names the anonymous session the CSRF tokens are bound to.
const SessionCookie = "csrf_session"

// HeaderCSRFToken is where protected requests carry their token.
const HeaderCSRFToken = "X-CSRF-Token"

// CSRFService issues and validates per-session single-use tokens. The
// original deployment kept them in Redis; an in-process map with the same
// TTL/single-use contract serves a single-node setup.
type CSRFService struct {
	ttl time.Duration

	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewCSRFService(ttl time.Duration) *CSRFService {
	return &CSRFService{
		ttl:    ttl,
		tokens: map[string]time.Time{},
	}
}

func (s *CSRFService) TTL() time.Duration {
	return s.ttl
}

// CreateToken mints a token bound to sessionID with the service TTL.
func (s *CSRFService) CreateToken(sessionID string) string {
	buf := make([]byte, 16)
	rand.Read(buf)
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.tokens[sessionID+":"+token] = time.Now().Add(s.ttl)
	s.prune()
	s.mu.Unlock()

	return token
}

// Validate checks and immediately consumes the token: a second use fails.
func (s *CSRFService) Validate(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	key := sessionID + ":" + token

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[key]
	if !ok {
		return false
	}
	delete(s.tokens, key)
	return time.Now().Before(expiry)
}

// prune must be called with the lock held.
func (s *CSRFService) prune() {
	now := time.Now()
	for key, expiry := range s.tokens {
		if now.After(expiry) {
			delete(s.tokens, key)
		}
	}
}

// SessionID extracts the CSRF session from the request cookie.
func SessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// CSRF rejects state-changing requests whose session/token pair does not
// validate.
func CSRF(csrf *CSRFService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !csrf.Validate(SessionID(r), r.Header.Get(HeaderCSRFToken)) {
				httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "csrf.validate")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
