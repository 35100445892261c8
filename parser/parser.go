package parser

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selectors for the rendered forum listing.
const (
	PostSelector = "article.w-full.m-0"
	BodySelector = `div[data-post-click-location="text-body"]`
	TimeSelector = "time[datetime]"
	LinkSelector = "a[href]"
)

var (
	isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T`)
	urlPattern     = regexp.MustCompile(`https?://\S+`)
)

// ExtractDate returns the calendar date of the first ISO-8601 timestamp in text.
// Only timestamps with a T separator match.
func ExtractDate(text string) (civil.Date, bool) {
	m := isoDatePattern.FindString(text)
	if m == "" {
		return civil.Date{}, false
	}
	d, err := civil.ParseDate(strings.TrimSuffix(m, "T"))
	if err != nil {
		return civil.Date{}, false
	}
	return d, true
}

// CleanText collapses every whitespace run to a single space and trims the ends.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ExtractLinks returns the http(s) URLs found in text, in order of appearance.
func ExtractLinks(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// LinkRewriter turns a forum-relative link prefix into the canonical absolute one.
type LinkRewriter struct {
	From string
	To   string
}

func (r LinkRewriter) Rewrite(href string) string {
	if r.From == "" {
		return href
	}
	return strings.ReplaceAll(href, r.From, r.To)
}

// RenderedPost is one post element read from a rendered page.
type RenderedPost struct {
	Text    string
	Date    civil.Date
	HasDate bool
	Links   []string
}

// Complete reports whether the post carries both body text and a date.
func (p RenderedPost) Complete() bool {
	return p.Text != "" && p.HasDate
}

// ExtractPosts scans every post element of a rendered HTML document, in document order.
func ExtractPosts(htmlStr string, rw LinkRewriter) ([]RenderedPost, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	var posts []RenderedPost
	doc.Find(PostSelector).Each(func(_ int, s *goquery.Selection) {
		var p RenderedPost

		if body := s.Find(BodySelector).First(); body.Length() > 0 {
			p.Text = CleanText(innerText(body))
			body.Find(LinkSelector).Each(func(_ int, a *goquery.Selection) {
				if href, ok := a.Attr("href"); ok && href != "" {
					p.Links = append(p.Links, rw.Rewrite(href))
				}
			})
		}

		if ts, ok := s.Find(TimeSelector).First().Attr("datetime"); ok {
			p.Date, p.HasDate = ExtractDate(ts)
		}

		posts = append(posts, p)
	})
	return posts, nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true, "td": true, "th": true,
}

// innerText approximates the browser's innerText: block elements are separated by whitespace
// and script/style content is dropped.
func innerText(s *goquery.Selection) string {
	var b strings.Builder

	var f func(*html.Node)
	f = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
		if block {
			b.WriteString(" ")
		}
	}

	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	return b.String()
}
