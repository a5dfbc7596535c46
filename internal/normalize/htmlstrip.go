package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"feedagg/internal/utils/text"
)

// StripHTML returns the plain-text content of an HTML fragment, using
// goquery the same way the aggregator's OpenGraph/meta discovery parses
// markup.
func StripHTML(htmlFragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlFragment))
	if err != nil {
		return htmlFragment
	}
	return strings.TrimSpace(doc.Text())
}

// TruncateRunes truncates s to at most n Unicode code points.
func TruncateRunes(s string, n int) string {
	if text.CountRunes(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// FirstImgSrc returns the src attribute of the first <img> element
// found in an HTML fragment, or "" if none is present.
func FirstImgSrc(htmlFragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlFragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}
