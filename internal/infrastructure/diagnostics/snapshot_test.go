package diagnostics

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanSnapshot_RemovesScriptsStylesAndComments(t *testing.T) {
	raw := `<html><head><meta charset="utf-8"><title>予約確認</title><style>.x{}</style></head>
<body>
	<!-- comment -->
	<div id="main">Hello</div>
	<script>alert("hi")</script>
	<noscript>enable js</noscript>
</body></html>`

	out, err := CleanSnapshot(raw, DefaultSnapshotConfig)
	require.NoError(t, err)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.NotContains(t, out, "<noscript")
	assert.NotContains(t, out, "comment")
	assert.Contains(t, out, `<div id="main">Hello</div>`)
	assert.Contains(t, out, "<title>予約確認</title>")
	assert.Contains(t, out, `<meta charset="utf-8"/>`)
}

func TestCleanSnapshot_KeepsLocatorAttributes(t *testing.T) {
	raw := `<body><button type="button" class="btn btn-primary" data-target="#success-modal" onclick="go()">この内容で予約する</button></body>`

	out, err := CleanSnapshot(raw, DefaultSnapshotConfig)
	require.NoError(t, err)

	assert.Contains(t, out, `data-target="#success-modal"`)
	assert.Contains(t, out, `class="btn btn-primary"`)
	assert.NotContains(t, out, "onclick")
}

func TestCleanSnapshot_Truncates(t *testing.T) {
	raw := "<body><p>" + strings.Repeat("a", 500) + "</p></body>"

	out, err := CleanSnapshot(raw, SnapshotConfig{MaxSize: 100})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "<!-- snapshot truncated -->"))
	assert.Less(t, len(out), 200)
}

func TestCleanSnapshot_TruncatesOnRuneBoundary(t *testing.T) {
	raw := "<body><p>" + strings.Repeat("宿泊予約", 50) + "</p></body>"

	for size := 40; size < 60; size++ {
		out, err := CleanSnapshot(raw, SnapshotConfig{MaxSize: size})
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(out), "max size %d", size)
		assert.True(t, strings.HasSuffix(out, "<!-- snapshot truncated -->"))
		assert.LessOrEqual(t, len(strings.TrimSuffix(out, "\n<!-- snapshot truncated -->")), size)
	}
}
