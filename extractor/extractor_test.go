package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Quantum networking milestone</title>
  <meta property="og:image" content="https://ex.com/hero.jpg">
</head>
<body>
  <article>
    <h1>Quantum networking milestone</h1>
    <p>Researchers demonstrated entanglement distribution across a 100 km
    fiber link, a step toward metropolitan quantum networks. The experiment
    maintained fidelity above the threshold needed for repeater chains.</p>
    <p>The team repeated the measurement over several weeks and reported
    stable performance across temperature swings, which had been the main
    obstacle for field deployments of this kind of hardware.</p>
    <p>Follow up work will focus on integrating the photon sources with
    existing telecom infrastructure so carriers can trial the links without
    laying dedicated fiber.</p>
  </article>
</body>
</html>`

func TestExtractArticle(t *testing.T) {
	article, err := ExtractArticle(articleHTML, "https://ex.com/post/1")
	require.NoError(t, err)
	assert.Contains(t, article.Text, "entanglement distribution")
	assert.NotEmpty(t, article.TopImage)
}

func TestExtractArticleEmpty(t *testing.T) {
	_, err := ExtractArticle("<html><body></body></html>", "")
	assert.Error(t, err)
}

func TestLeadImageFromMeta(t *testing.T) {
	img := LeadImage(articleHTML, "https://ex.com/post/1")
	assert.Equal(t, "https://ex.com/hero.jpg", img)
}

func TestLeadImageFromBody(t *testing.T) {
	page := `<html><body><img src="/img/cover.png"><p>text</p></body></html>`
	img := LeadImage(page, "https://ex.com/post/2")
	assert.Equal(t, "https://ex.com/img/cover.png", img)
}

func TestLeadImageMissing(t *testing.T) {
	img := LeadImage("<html><body><p>no pictures</p></body></html>", "https://ex.com")
	assert.Empty(t, img)
}

func TestValidArticleURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://ex.com/a", true},
		{"http://ex.com", true},
		{"ftp://ex.com/a", false},
		{"/relative/path", false},
		{"", false},
		{"https://", false},
		{"not a url at all ::", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidArticleURL(tc.url), tc.url)
	}
}

func TestFilterImageURLs(t *testing.T) {
	in := []string{"https://ex.com/a.jpg", "data:image/png;base64,xx", "/rel.jpg", "https://ex.com/b.png"}
	out := FilterImageURLs(in)
	assert.Equal(t, []string{"https://ex.com/a.jpg", "https://ex.com/b.png"}, out)
}
