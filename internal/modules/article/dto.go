package article

// CreateArticleDTO is the write payload for a new article. Published is
// tri-state: nil defers to the defaulting engine.
type CreateArticleDTO struct {
	Title       string   `json:"title" binding:"required"`
	Body        string   `json:"body"`
	Extended    string   `json:"extended"`
	TextFilter  string   `json:"text_filter"`
	Permalink   string   `json:"permalink"`
	Published   *bool    `json:"published"`
	Keywords    string   `json:"keywords"`
	Author      string   `json:"author"`
	UserID      *string  `json:"user_id"`
	CategoryIDs []string `json:"category_ids"`
}

// UpdateArticleDTO patches an existing article. The permalink and the
// fingerprint are engine-owned and deliberately absent.
type UpdateArticleDTO struct {
	Title       *string  `json:"title"`
	Body        *string  `json:"body"`
	Extended    *string  `json:"extended"`
	TextFilter  *string  `json:"text_filter"`
	Published   *bool    `json:"published"`
	Keywords    *string  `json:"keywords"`
	Author      *string  `json:"author"`
	CategoryIDs []string `json:"category_ids"`
}
