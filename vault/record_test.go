package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRecord(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := NewRecord(Fields{Title: "Bank", Username: "alice", Password: "p@ss"}, now)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, int64(1700000000), r.CreatedAt)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
	assert.Equal(t, "Bank", r.Title)

	other := NewRecord(Fields{}, now)
	assert.NotEqual(t, r.ID, other.ID)
	assert.Empty(t, other.Title, "empty fields are accepted")
}

func TestRecord_ApplyUpdate(t *testing.T) {
	created := time.Unix(1700000000, 0)
	r := NewRecord(Fields{Title: "Bank", Username: "alice", Password: "p@ss", URL: "https://bank"}, created)
	id := r.ID

	r.ApplyUpdate(Fields{Title: "Bank 2", Username: "bob", Password: "new"}, created.Add(time.Minute))

	assert.Equal(t, id, r.ID)
	assert.Equal(t, int64(1700000000), r.CreatedAt)
	assert.Equal(t, int64(1700000060), r.UpdatedAt)
	assert.Equal(t, Fields{Title: "Bank 2", Username: "bob", Password: "new"}, r.Fields())
}

func TestRecord_ApplyUpdateClockRegression(t *testing.T) {
	created := time.Unix(1700000000, 0)
	r := NewRecord(Fields{Title: "a"}, created)

	r.ApplyUpdate(Fields{Title: "b"}, created.Add(-time.Hour))
	assert.GreaterOrEqual(t, r.UpdatedAt, r.CreatedAt)
}

func TestRecord_Matches(t *testing.T) {
	r := Record{Title: "My Gmail Account", Username: "Alice", URL: "https://Example.com"}

	tests := []struct {
		query string
		want  bool
	}{
		{"gmail", true},
		{"GMAIL", true},
		{"alice", true},
		{"example", true},
		{"bank", false},
		{"", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Matches(tt.query), "query %q", tt.query)
	}

	noURL := Record{Title: "x", Username: "y"}
	assert.False(t, noURL.Matches("http"))
}
