package model

import "time"

// Identity is a signed-in account. The orchestration core only reads it;
// the auth session manager owns mutation.
type Identity struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
