package contract

import "time"

// Review is the structured output of a contract analysis. When the model
// reply cannot be parsed as JSON the raw text lands in Summary and the
// lists stay empty.
type Review struct {
	Summary         string   `json:"summary"`
	Risks           []string `json:"risks"`
	Compliance      []string `json:"compliance"`
	Recommendations []string `json:"recommendations"`
}

// Contract is a reviewed document persisted for later reference.
type Contract struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Result    Review    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
