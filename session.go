package auth

import (
	"encoding/json"
	"strconv"
	"sync"
)

// Session keys written after a successful login
const (
	SessionUserID       = "user_id"
	SessionUserName     = "user_name"
	SessionUserEmail    = "user_email"
	SessionUserIsAdmin  = "user_is_admin"
	SessionUserLoggedIn = "user_logged_in"
	SessionUserSettings = "user_settings"

	SessionFeedbackPositive = "feedback_positive"
	SessionFeedbackNegative = "feedback_negative"
)

// Principal is the caller as seen through the session
type Principal struct {
	UserID   int64
	LoggedIn bool
	IsAdmin  bool
}

// PrincipalFromSession reads the logged in user from s. A nil session yields
// an anonymous principal.
func PrincipalFromSession(s Session) Principal {
	if s == nil {
		return Principal{}
	}
	p := Principal{
		LoggedIn: sessionBool(s, SessionUserLoggedIn),
		IsAdmin:  sessionBool(s, SessionUserIsAdmin),
	}
	if raw, ok := s.Get(SessionUserID); ok {
		p.UserID = toInt64(raw)
	}
	return p
}

// HydrateSession writes the login state of user into s.
func HydrateSession(s Session, user *User, settings map[string]string) {
	if settings == nil {
		settings = map[string]string{}
	}
	s.Set(SessionUserID, user.ID)
	s.Set(SessionUserName, user.Name)
	s.Set(SessionUserEmail, user.Email)
	s.Set(SessionUserIsAdmin, user.IsAdmin())
	s.Set(SessionUserLoggedIn, true)
	s.Set(SessionUserSettings, settings)
}

// AddFeedbackPositive appends a success message shown on the next render
func AddFeedbackPositive(s Session, message string) {
	appendFeedback(s, SessionFeedbackPositive, message)
}

// AddFeedbackNegative appends an error message shown on the next render
func AddFeedbackNegative(s Session, message string) {
	appendFeedback(s, SessionFeedbackNegative, message)
}

// FeedbackPositive returns the pending success messages
func FeedbackPositive(s Session) []string {
	return feedback(s, SessionFeedbackPositive)
}

// FeedbackNegative returns the pending error messages
func FeedbackNegative(s Session) []string {
	return feedback(s, SessionFeedbackNegative)
}

func appendFeedback(s Session, key, message string) {
	if s == nil {
		return
	}
	s.Set(key, append(feedback(s, key), message))
}

func feedback(s Session, key string) []string {
	if s == nil {
		return nil
	}
	raw, ok := s.Get(key)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func sessionBool(s Session, key string) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func toInt64(raw any) int64 {
	switch v := raw.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// MapSession is an in memory Session safe for concurrent use.
type MapSession struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMapSession returns a session seeded with values
func NewMapSession(values map[string]any) *MapSession {
	s := &MapSession{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MapSession) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MapSession) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MapSession) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Values returns a copy of every stored value
func (s *MapSession) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
