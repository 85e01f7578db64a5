package models

// Delivery is one page browse submission that reached the automation API.
// Visitor identifiers are never stored.
type Delivery struct {
	ID         string `json:"id"`
	PageURL    string `json:"page_url"`
	Result     string `json:"result"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	CreatedAt  int64  `json:"created_at"`
}

type DeliveryStats struct {
	Since    int64            `json:"since"`
	Total    int64            `json:"total"`
	ByResult map[string]int64 `json:"by_result"`
}
