package auth_test

import (
	"encoding/json"
	"sync"
	"testing"

	auth "github.com/goliatone/go-auth-lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalFromSession(t *testing.T) {
	assert.Equal(t, auth.Principal{}, auth.PrincipalFromSession(nil))
	assert.Equal(t, auth.Principal{}, auth.PrincipalFromSession(auth.NewMapSession(nil)))

	tests := []struct {
		name   string
		values map[string]any
		want   auth.Principal
	}{
		{
			name:   "native types",
			values: map[string]any{auth.SessionUserID: int64(5), auth.SessionUserLoggedIn: true, auth.SessionUserIsAdmin: true},
			want:   auth.Principal{UserID: 5, LoggedIn: true, IsAdmin: true},
		},
		{
			name:   "decoded json",
			values: map[string]any{auth.SessionUserID: json.Number("6"), auth.SessionUserLoggedIn: true},
			want:   auth.Principal{UserID: 6, LoggedIn: true},
		},
		{
			name:   "float id",
			values: map[string]any{auth.SessionUserID: float64(8)},
			want:   auth.Principal{UserID: 8},
		},
		{
			name:   "string flags",
			values: map[string]any{auth.SessionUserID: "9", auth.SessionUserLoggedIn: "true", auth.SessionUserIsAdmin: "no"},
			want:   auth.Principal{UserID: 9, LoggedIn: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.PrincipalFromSession(auth.NewMapSession(tt.values)))
		})
	}
}

func TestHydrateSession(t *testing.T) {
	s := auth.NewMapSession(nil)
	auth.HydrateSession(s, &auth.User{ID: 3, Name: "bob", Email: "bob@example.com", Role: auth.RoleMember}, nil)

	values := s.Values()
	assert.Equal(t, int64(3), values[auth.SessionUserID])
	assert.Equal(t, "bob", values[auth.SessionUserName])
	assert.Equal(t, "bob@example.com", values[auth.SessionUserEmail])
	assert.Equal(t, false, values[auth.SessionUserIsAdmin])
	assert.Equal(t, true, values[auth.SessionUserLoggedIn])
	assert.Equal(t, map[string]string{}, values[auth.SessionUserSettings])
}

func TestFeedback(t *testing.T) {
	s := auth.NewMapSession(nil)
	assert.Nil(t, auth.FeedbackPositive(s))

	auth.AddFeedbackPositive(s, "one")
	auth.AddFeedbackPositive(s, "two")
	auth.AddFeedbackNegative(s, "bad")

	assert.Equal(t, []string{"one", "two"}, auth.FeedbackPositive(s))
	assert.Equal(t, []string{"bad"}, auth.FeedbackNegative(s))

	decoded := auth.NewMapSession(map[string]any{auth.SessionFeedbackNegative: []any{"x", 1, "y"}})
	assert.Equal(t, []string{"x", "y"}, auth.FeedbackNegative(decoded))

	auth.AddFeedbackNegative(nil, "ignored")
	assert.Nil(t, auth.FeedbackNegative(nil))
}

func TestMapSession(t *testing.T) {
	seed := map[string]any{"a": 1}
	s := auth.NewMapSession(seed)
	seed["a"] = 2

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	s.Delete("a")
	_, ok = s.Get("a")
	assert.False(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set("k", i)
			s.Get("k")
			s.Values()
		}(i)
	}
	wg.Wait()

	_, ok = s.Get("k")
	assert.True(t, ok)
}
