package models

// ArticleModel is a published content item.
//
// Published is a pointer so the defaulting engine can tell "never set" apart
// from an explicit false; after a save it is always non-nil.
type ArticleModel struct {
	Base
	Title        string  `json:"title"         gorm:"not null"`
	Body         string  `json:"body"          gorm:"type:longtext"`
	Extended     string  `json:"extended"      gorm:"type:longtext"`
	BodyHTML     string  `json:"body_html"     gorm:"type:longtext"`
	ExtendedHTML string  `json:"extended_html" gorm:"type:longtext"`
	TextFilter   string  `json:"text_filter"`
	Permalink    string  `json:"permalink"     gorm:"index"`
	Published    *bool   `json:"published"     gorm:"index"`
	GUID         string  `json:"guid"          gorm:"uniqueIndex"`
	Keywords     string  `json:"keywords"`
	Author       string  `json:"author"`
	UserID       *string `json:"user_id,omitempty" gorm:"index"`

	User       *UserModel      `json:"user,omitempty"       gorm:"foreignKey:UserID"`
	Comments   []CommentModel  `json:"comments,omitempty"   gorm:"foreignKey:ArticleID"`
	Trackbacks []TrackbackModel `json:"trackbacks,omitempty" gorm:"foreignKey:ArticleID"`
	Pings      []PingModel     `json:"pings,omitempty"      gorm:"foreignKey:ArticleID"`
	Resources  []ResourceModel `json:"resources,omitempty"  gorm:"foreignKey:ArticleID"`
	Tags       []TagModel      `json:"tags,omitempty"       gorm:"many2many:article_tags;joinForeignKey:ArticleID;joinReferences:TagID"`
	Categories []CategoryModel `json:"categories,omitempty" gorm:"many2many:article_categories;joinForeignKey:ArticleID;joinReferences:CategoryID"`
}

func (ArticleModel) TableName() string { return "articles" }

// IsPublished treats an unset flag as published.
func (a *ArticleModel) IsPublished() bool {
	return a.Published == nil || *a.Published
}

// FullHTML joins the rendered halves with one blank line, even when a half
// is empty.
func (a *ArticleModel) FullHTML() string {
	return a.BodyHTML + "\n\n" + a.ExtendedHTML
}
