package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var logoWord = regexp.MustCompile(`(?i)logo`)

// CompanyInfo is what the DOM reveals about the employer. Empty means not found.
type CompanyInfo struct {
	Name string
	Logo string
}

func firstMatch(doc *goquery.Document, selector string) (*goquery.Selection, bool) {
	if doc == nil || strings.TrimSpace(selector) == "" {
		return nil, false
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return sel, true
}

// JobTitle returns the untrimmed text of the first element matching selector.
func JobTitle(doc *goquery.Document, selector string) (string, bool) {
	sel, ok := firstMatch(doc, selector)
	if !ok {
		return "", false
	}
	return sel.Text(), true
}

// JobLocation returns the trimmed text of the first element matching
// selector. Whitespace-only text counts as absent.
func JobLocation(doc *goquery.Document, selector string) (string, bool) {
	sel, ok := firstMatch(doc, selector)
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(sel.Text())
	return s, s != ""
}

// CompanyNameAndLogo looks for the employer in two passes. With a name
// selector, the name is read from it and the logo element is the first <img>
// whose alt mentions that name. Otherwise the logo selector picks the element.
// A missing name is inferred from the logo alt text with "logo" removed.
func CompanyNameAndLogo(doc *goquery.Document, logoSelector, nameSelector, pageURL string) CompanyInfo {
	var out CompanyInfo

	if el, ok := firstMatch(doc, nameSelector); ok {
		out.Name = strings.TrimSpace(el.Text())
	}

	var logoEl *goquery.Selection
	if out.Name != "" {
		doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			alt, _ := img.Attr("alt")
			if alt != "" && strings.Contains(alt, out.Name) {
				logoEl = img
				return false
			}
			return true
		})
	}
	if logoEl == nil {
		if el, ok := firstMatch(doc, logoSelector); ok {
			logoEl = el
		}
	}
	if logoEl == nil {
		return out
	}

	out.Logo = imageSource(logoEl, pageURL)
	if out.Name == "" {
		alt, _ := logoEl.Attr("alt")
		out.Name = strings.TrimSpace(logoWord.ReplaceAllString(alt, ""))
	}
	return out
}

func imageSource(img *goquery.Selection, pageURL string) string {
	if goquery.NodeName(img) != "img" {
		return ""
	}
	src, _ := img.Attr("src")
	return absoluteURL(pageURL, src)
}
