package dto

type SearchQuery struct {
	Q     string `form:"q" binding:"required,max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type EntryHit struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Technologies []string `json:"technologies"`
	Date         string   `json:"date"`
	Author       string   `json:"author"`
	AuthorID     string   `json:"author_id"`
	CreatedAt    int64    `json:"created_at"`
}

type SearchResult struct {
	Query              string     `json:"query"`
	Hits               []EntryHit `json:"hits"`
	EstimatedTotalHits int64      `json:"estimated_total_hits"`
	ProcessingTimeMs   int64      `json:"processing_time_ms"`
}
