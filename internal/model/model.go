package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// DisplayName returns the username, or fallback when the cached identity is empty.
func (u User) DisplayName(fallback string) string {
	if s := strings.TrimSpace(u.Username); s != "" {
		return s
	}
	return fallback
}

func (u *User) UnmarshalJSON(b []byte) error {
	var w struct {
		ID       json.RawMessage `json:"id"`
		MongoID  json.RawMessage `json:"_id"`
		Username string          `json:"username"`
		Email    string          `json:"email"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	u.ID = rawID(w.ID, w.MongoID)
	u.Username = w.Username
	u.Email = w.Email
	return nil
}

// Task is the only entity the API manages. IDs are assigned by the server.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var w struct {
		ID          json.RawMessage `json:"id"`
		MongoID     json.RawMessage `json:"_id"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		CreatedAt   json.RawMessage `json:"createdAt"`
		UpdatedAt   json.RawMessage `json:"updatedAt"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	t.ID = rawID(w.ID, w.MongoID)
	t.Title = w.Title
	t.Description = w.Description
	t.CreatedAt = rawTime(w.CreatedAt)
	t.UpdatedAt = rawTime(w.UpdatedAt)
	return nil
}

// Session is the client's authentication state. An empty token means signed out.
type Session struct {
	Token string `json:"-"`
	User  User   `json:"user"`
}

func (s Session) Authenticated() bool { return strings.TrimSpace(s.Token) != "" }

// rawID accepts JSON strings and numbers; the first non-empty candidate wins.
func rawID(candidates ...json.RawMessage) string {
	for _, raw := range candidates {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		if raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
			continue
		}
		return string(raw)
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// rawTime is lenient: unknown formats decode to the zero time rather than failing the task.
func rawTime(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}
	if raw[0] != '"' {
		// Unix milliseconds.
		if ms, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
