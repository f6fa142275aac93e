package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 文档注释：把内容区的 HTML 片段转为终端可读文字
// 背景：内容为不透明 HTML，终端无法渲染标签；块级元素换行，其余取文本，空白折叠。
// 约束：解析失败时原样返回。
func PlainText(contents string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contents))
	if err != nil {
		return contents
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
