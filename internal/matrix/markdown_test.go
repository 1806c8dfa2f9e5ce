package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("**Group Name:** infra", false)
	require.NoError(t, err)
	assert.Equal(t, "<strong>Group Name:</strong> infra", out)

	out, err = RenderMarkdown("one      \ntwo", false)
	require.NoError(t, err)
	assert.Equal(t, "one<br>\ntwo", out)

	out, err = RenderMarkdown("first\n\nsecond", false)
	require.NoError(t, err)
	assert.Equal(t, "<p>first</p>\n<p>second</p>", out)
}

func TestRenderMarkdown_RawHTML(t *testing.T) {
	md := `* <a href="https://matrix.to/#/@dummy:fedora.im">@dummy:fedora.im</a> (dummy)`

	out, err := RenderMarkdown(md, false)
	require.NoError(t, err)
	assert.NotContains(t, out, "<a href")

	out, err = RenderMarkdown(md, true)
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="https://matrix.to/#/@dummy:fedora.im">@dummy:fedora.im</a>`)
}
