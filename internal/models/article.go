package models

// Article body formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// ArticleModel is a published research article.
type ArticleModel struct {
	Base
	Title    string `json:"title"    gorm:"not null"`
	Slug     string `json:"slug"     gorm:"type:varchar(191);uniqueIndex;not null"`
	Content  string `json:"content"  gorm:"type:longtext"`
	Format   string `json:"format"   gorm:"type:varchar(16);not null;default:html"`
	Excerpt  string `json:"excerpt"  gorm:"type:text"`
	Category string `json:"category" gorm:"type:varchar(64);index"`
	CoverURL string `json:"coverUrl"`
	Tags     Tags   `json:"tags"     gorm:"type:longtext"`
	Views    int    `json:"views"    gorm:"not null;default:0"`
}

func (ArticleModel) TableName() string { return "articles" }
