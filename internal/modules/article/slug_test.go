package article

import (
	"strings"
	"testing"
	"time"

	"github.com/afr-space/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	cases := map[string]string{
		"Hello World":           "hello-world-1700000000123",
		"  Q3 Outlook: Rates!! ": "q3-outlook-rates-1700000000123",
		"宏观周报":                  "article-1700000000123",
		"A股 2024 展望":             "a-2024-1700000000123",
		"":                      "article-1700000000123",
	}
	for title, want := range cases {
		assert.Equal(t, want, Slugify(title, now), title)
	}
}

func TestNormalizeFormat(t *testing.T) {
	f, err := normalizeFormat("")
	require.NoError(t, err)
	assert.Equal(t, models.FormatHTML, f)

	f, err = normalizeFormat(" Markdown ")
	require.NoError(t, err)
	assert.Equal(t, models.FormatMarkdown, f)

	_, err = normalizeFormat("docx")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDeriveExcerpt(t *testing.T) {
	assert.Equal(t, "given", deriveExcerpt("  given ", "<p>body</p>", models.FormatHTML))
	assert.Equal(t, "Hello world", deriveExcerpt("", "<p>Hello</p>\n<p>world</p>", models.FormatHTML))

	md := deriveExcerpt("", "# Title\n\nSome **bold** text", models.FormatMarkdown)
	assert.Equal(t, "Title Some bold text", md)

	long := deriveExcerpt("", strings.Repeat("字", 300), models.FormatHTML)
	assert.LessOrEqual(t, len([]rune(long)), 161)
}
