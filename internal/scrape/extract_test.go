package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractVisibleTextStripsNonVisible(t *testing.T) {
	html := `<html><head>
		<style>body { color: red; }</style>
		<script>alert("hi");</script>
	</head><body>
		<h1>Warranty</h1>
		<p>  2 years  </p>
		<noscript>enable js</noscript>
	</body></html>`

	text := ExtractVisibleText(html)
	require.Equal(t, "Warranty\n2 years", text)
	require.NotContains(t, text, "alert")
	require.NotContains(t, text, "color: red")
	require.NotContains(t, text, "enable js")
}

func TestExtractVisibleTextSplitsConcatenatedHeadings(t *testing.T) {
	html := `<body><div>First heading   Second heading</div></body>`
	text := ExtractVisibleText(html)
	require.Equal(t, "First heading\nSecond heading", text)
}

func TestExtractVisibleTextDropsBlankLines(t *testing.T) {
	html := "<body><p>one</p>\n\n\n<p>two</p></body>"
	text := ExtractVisibleText(html)
	require.Equal(t, "one\ntwo", text)
}

func TestExtractVisibleTextEmptyInput(t *testing.T) {
	require.Equal(t, "", ExtractVisibleText(""))
	require.Equal(t, "", ExtractVisibleText("<body><script>only()</script></body>"))
}
