package models

// UserProjection is the owner/agent slice of a user row that search results
// are enriched with. It is fetched in one batch per search call.
type UserProjection struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	AgentPhone string `json:"agent_phone,omitempty"`
	AgentPhoto string `json:"agent_photo,omitempty"`
}

// Hit is a single enriched search result: the index document, its relevance
// score, and the owner projection merged by id. User is null when the
// canonical row no longer exists (a tolerated consistency gap until the next
// reindex).
type Hit struct {
	ListingDocument
	Score float64         `json:"score"`
	User  *UserProjection `json:"user"`
}

// SearchResult is the response for a search request. PageCount is
// ceil(Total / Size).
type SearchResult struct {
	Data      []*Hit `json:"data"`
	Total     int    `json:"total"`
	Page      int    `json:"page"`
	Size      int    `json:"size"`
	PageCount int    `json:"page_count"`
}

// ReindexResult reports a bulk reindex outcome. Count is the number of
// listings attempted, not necessarily the number successfully indexed.
type ReindexResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}
