package vault

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one credential entry. Records handed out by the Vault are
// copies; mutating them has no effect on the store.
type Record struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	URL       string `json:"url,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Fields are the mutable parts of a Record. URL and Notes are optional.
type Fields struct {
	Title    string
	Username string
	Password string
	URL      string
	Notes    string
}

func NewRecord(f Fields, now time.Time) Record {
	ts := now.Unix()
	return Record{
		ID:        uuid.NewString(),
		Title:     f.Title,
		Username:  f.Username,
		Password:  f.Password,
		URL:       f.URL,
		Notes:     f.Notes,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// ApplyUpdate overwrites every mutable field. UpdatedAt never moves
// backwards.
func (r *Record) ApplyUpdate(f Fields, now time.Time) {
	r.Title = f.Title
	r.Username = f.Username
	r.Password = f.Password
	r.URL = f.URL
	r.Notes = f.Notes
	r.UpdatedAt = max(now.Unix(), r.UpdatedAt, r.CreatedAt)
}

func (r Record) Fields() Fields {
	return Fields{Title: r.Title, Username: r.Username, Password: r.Password, URL: r.URL, Notes: r.Notes}
}

// Matches reports whether query is a case-insensitive substring of the
// title, username or URL.
func (r Record) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Username), q) {
		return true
	}
	return r.URL != "" && strings.Contains(strings.ToLower(r.URL), q)
}
