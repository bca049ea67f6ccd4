package chat

import "time"

// Source is a citation attached to model output.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Turn is one exchange entry in the advisor transcript. Role is either
// "user" or "model".
type Turn struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)
