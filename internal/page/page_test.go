package page

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendParagraph(t *testing.T) {
	doc := New("")

	fragment := doc.AppendParagraph("2 + 3 = 5")
	assert.Equal(t, "<p>2 + 3 = 5</p>", fragment)
	assert.Equal(t, "<p>2 + 3 = 5</p>", doc.Body())
}

func TestAppendIsAdditive(t *testing.T) {
	doc := New("")

	doc.AppendParagraph("2 + 3 = 5")
	doc.AppendParagraph("NaN + 1 = NaN")

	assert.Equal(t, "<p>2 + 3 = 5</p><p>NaN + 1 = NaN</p>", doc.Body())
}

func TestAppendEscapesMarkup(t *testing.T) {
	doc := New("")

	fragment := doc.AppendParagraph(`<script>alert("x")</script> & more`)
	assert.Equal(t, "<p>&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; more</p>", fragment)
}

func TestRender(t *testing.T) {
	doc := New("Adder <demo>")
	doc.AppendParagraph("1 + 1 = 2")

	out := doc.Render()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Adder &lt;demo&gt;</title>")
	assert.Contains(t, out, "<body><p>1 + 1 = 2</p></body>")
}

func TestLoadMissingFile(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), "index.html"), "")
	require.NoError(t, err)

	assert.Empty(t, doc.Body())
	assert.Contains(t, doc.Render(), "<title>"+DefaultTitle+"</title>")
}

func TestLoadKeepsExistingBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	src := "<html><head><title>Mine</title></head><BODY class=\"x\">\n<h1>Sums</h1>\n</BODY></html>"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	doc, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "\n<h1>Sums</h1>\n", doc.Body())
	assert.Contains(t, doc.Render(), "<title>Mine</title>")

	doc.AppendParagraph("2 + 3 = 5")
	assert.Equal(t, "\n<h1>Sums</h1>\n<p>2 + 3 = 5</p>", doc.Body())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")

	first := New("")
	first.AppendParagraph("2 + 3 = 5")
	require.NoError(t, first.Save(path))

	second, err := Load(path, "")
	require.NoError(t, err)
	second.AppendParagraph("4 + 4 = 8")
	require.NoError(t, second.Save(path))

	third, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>2 + 3 = 5</p><p>4 + 4 = 8</p>", third.Body())
}

func TestLoadImpliedBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte("<!DOCTYPE html>\n<title>x</title>\n<p>1 + 1 = 2</p>\n"), 0644))

	doc, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>1 + 1 = 2</p>\n", doc.Body())

	doc.AppendParagraph("2 + 3 = 5")
	require.NoError(t, doc.Save(path))

	saved, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>1 + 1 = 2</p>\n<p>2 + 3 = 5</p>", saved.Body())
}

func TestSaveKeepsHead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	src := `<!DOCTYPE html><html><head><meta charset="utf-8"><title>Adder</title>` +
		`<script src="simple.js"></script></head><body></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	doc, err := Load(path, "ignored")
	require.NoError(t, err)
	doc.AppendParagraph("2 + 3 = 5")
	require.NoError(t, doc.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `<script src="simple.js"></script>`)
	assert.Contains(t, out, "<title>Adder</title>")
	assert.Contains(t, out, "<body><p>2 + 3 = 5</p></body>")
}

func TestLoadIgnoresBodyInComment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	src := "<html><head><!-- <body> --></head><body><p>kept</p></body></html>"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	doc, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>kept</p>", doc.Body())

	doc.AppendParagraph("2 + 3 = 5")
	assert.Contains(t, doc.Render(), "<head><!-- <body> --></head>")
	assert.Equal(t, "<p>kept</p><p>2 + 3 = 5</p>", doc.Body())
}

func TestAppendedTextIsNotMarkup(t *testing.T) {
	doc := New("")
	doc.AppendParagraph("<b>1</b> + 2 = NaN")

	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, doc.Save(path))

	saved, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;b&gt;1&lt;/b&gt; + 2 = NaN</p>", saved.Body())
	assert.NotContains(t, saved.Render(), "<b>")
}
