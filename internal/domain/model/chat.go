package model

import (
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TitleMaxLen bounds a session title derived from its first prompt.
const TitleMaxLen = 50

// ChatTurn is one message within a session. Immutable once created.
type ChatTurn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	ModelID   string    `json:"model_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession is the aggregate root for one conversation. ID stays empty for
// guest/local-only sessions until the persistence layer assigns one on the
// first successful save.
type ChatSession struct {
	ID        string     `json:"id,omitempty"`
	OwnerID   string     `json:"owner_id,omitempty"`
	Title     string     `json:"title"`
	Turns     []ChatTurn `json:"turns"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewChatSession() *ChatSession {
	now := time.Now()
	return &ChatSession{
		Turns:     make([]ChatTurn, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *ChatSession) AddTurn(t ChatTurn) {
	if s.Title == "" && t.Role == RoleUser {
		s.Title = DeriveTitle(t.Content)
	}
	s.Turns = append(s.Turns, t)
	s.UpdatedAt = time.Now()
}

// LastPair returns the most recent user/assistant contents. Either may be
// empty when the session has no turn of that role.
func (s *ChatSession) LastPair() (prompt, reply string) {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		switch s.Turns[i].Role {
		case RoleUser:
			if prompt == "" {
				prompt = s.Turns[i].Content
			}
		case RoleAssistant:
			if reply == "" {
				reply = s.Turns[i].Content
			}
		}
		if prompt != "" && reply != "" {
			return
		}
	}
	return
}

// DeriveTitle truncates the first prompt to TitleMaxLen runes, marking the
// cut with an ellipsis.
func DeriveTitle(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	runes := []rune(prompt)
	if len(runes) <= TitleMaxLen {
		return prompt
	}
	return string(runes[:TitleMaxLen]) + "..."
}

// SessionSummary is the list row for the sidebar: enough to show and open a
// persisted session without hydrating its turns.
type SessionSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry is one record of the bounded local-only history kept for
// guest continuity, independent of remote persistence.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Model     string    `json:"model"` // display name, not id
	ImageURL  string    `json:"image_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryCap bounds the local history; oldest entries are evicted first.
const HistoryCap = 50
