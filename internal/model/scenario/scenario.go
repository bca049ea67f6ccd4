package scenario

import (
	"time"

	"github.com/alexiscpa/legal-consultant/internal/model/chat"
)

// Advice is the free-text guidance returned for a management scenario,
// with citations de-duplicated by URI.
type Advice struct {
	Text    string        `json:"text"`
	Sources []chat.Source `json:"sources"`
}

// Scenario is a saved consultation persisted for later reference.
type Scenario struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Advice      string    `json:"advice"`
	CreatedAt   time.Time `json:"created_at"`
}
