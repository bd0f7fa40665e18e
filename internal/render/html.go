package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var htmlConverter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

const htmlShell = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`

// HTML converts a rendered Markdown artifact into a standalone HTML
// document.
func HTML(title string, markdown []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := htmlConverter.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("converting markdown to html: %w", err)
	}
	return []byte(fmt.Sprintf(htmlShell, title, body.String())), nil
}
