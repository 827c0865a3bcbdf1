package extraction

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// minArticleChars is the smallest readability result trusted over the full body.
const minArticleChars = 200

var (
	blankLines       = regexp.MustCompile(`\n{3,}`)
	shortDescription = regexp.MustCompile(`"shortDescription":"((?:[^"\\]|\\.)*)"`)
)

// PageContent is source material reduced to what the model needs.
type PageContent struct {
	URL         string
	Title       string
	Description string
	Images      []string
	Structured  []string
	Body        string
}

// String renders the content as prompt text.
func (p *PageContent) String() string {
	var b strings.Builder
	if p.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", p.URL)
	}
	if p.Title != "" {
		fmt.Fprintf(&b, "Título de la página: %s\n", p.Title)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Descripción: %s\n", p.Description)
	}
	if len(p.Images) > 0 {
		b.WriteString("Imágenes candidatas:\n")
		for _, img := range p.Images {
			fmt.Fprintf(&b, "- %s\n", img)
		}
	}
	if len(p.Structured) > 0 {
		b.WriteString("\nDatos estructurados (JSON-LD):\n")
		for _, s := range p.Structured {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	if p.Body != "" {
		b.WriteString("\nContenido:\n")
		b.WriteString(p.Body)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// PrepareDocument reduces a recipe page to its structured data, candidate
// images and main content as Markdown.
func PrepareDocument(rawHTML, pageURL string) (*PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	base, _ := url.Parse(pageURL)
	content := &PageContent{
		URL:         pageURL,
		Title:       strings.TrimSpace(firstNonEmpty(metaContent(doc, "og:title"), doc.Find("title").First().Text())),
		Description: strings.TrimSpace(firstNonEmpty(metaContent(doc, "og:description"), metaContent(doc, "description"))),
		Structured:  recipeJSONLD(doc),
		Images:      candidateImages(doc, base),
	}

	mainHTML := ""
	if base != nil && base.Host != "" {
		rp := readability.NewParser()
		article, err := rp.Parse(strings.NewReader(rawHTML), base)
		if err != nil {
			log.Printf("[Extraction] Readability failed for %s: %v", pageURL, err)
		} else if len(strings.TrimSpace(article.Content)) >= minArticleChars {
			mainHTML = article.Content
		}
	}
	if mainHTML == "" {
		doc.Find("script, style, noscript, iframe, svg, nav, footer, form, header").Remove()
		mainHTML, err = doc.Find("body").Html()
		if err != nil || strings.TrimSpace(mainHTML) == "" {
			mainHTML, _ = doc.Html()
		}
	}

	domain := ""
	if base != nil {
		domain = base.Hostname()
	}
	markdown, err := htmlmd.NewConverter(domain, true, nil).ConvertString(mainHTML)
	if err != nil {
		log.Printf("[Extraction] Markdown conversion failed for %s: %v", pageURL, err)
		markdown = collapseText(doc.Find("body").Text())
	}
	content.Body = blankLines.ReplaceAllString(strings.TrimSpace(markdown), "\n\n")

	return content, nil
}

// PrepareVideo reduces a video post page to its title, caption and thumbnail.
func PrepareVideo(rawHTML, pageURL string, platform Platform) (*PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	content := &PageContent{
		URL:         pageURL,
		Title:       strings.TrimSpace(firstNonEmpty(metaContent(doc, "og:title"), metaContent(doc, "twitter:title"), doc.Find("title").First().Text())),
		Description: strings.TrimSpace(firstNonEmpty(metaContent(doc, "og:description"), metaContent(doc, "twitter:description"), metaContent(doc, "description"))),
	}
	if img := firstNonEmpty(metaContent(doc, "og:image"), metaContent(doc, "twitter:image")); img != "" {
		content.Images = []string{img}
	}

	if platform == PlatformYouTube {
		if m := shortDescription.FindStringSubmatch(rawHTML); m != nil {
			var full string
			if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &full); err == nil && len(full) > len(content.Description) {
				content.Body = strings.TrimSpace(full)
			}
		}
	}
	return content, nil
}

func metaContent(doc *goquery.Document, key string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property="%s"], meta[name="%s"]`, key, key)).First()
	return strings.TrimSpace(sel.AttrOr("content", ""))
}

// recipeJSONLD returns the ld+json blocks that describe a Recipe.
func recipeJSONLD(doc *goquery.Document) []string {
	var blocks []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" || !strings.Contains(strings.ToLower(raw), "recipe") {
			return
		}
		var probe any
		if err := json.Unmarshal([]byte(raw), &probe); err != nil {
			return
		}
		compact, err := json.Marshal(probe)
		if err != nil {
			return
		}
		blocks = append(blocks, string(compact))
	})
	return blocks
}

func candidateImages(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var images []string
	add := func(src string) {
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}
		u, err := url.Parse(src)
		if err != nil {
			return
		}
		if base != nil && !u.IsAbs() {
			u = base.ResolveReference(u)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		u.Fragment = ""
		s := u.String()
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		images = append(images, s)
	}

	add(metaContent(doc, "og:image"))
	add(metaContent(doc, "twitter:image"))
	doc.Find("article img[src], main img[src], .recipe img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		add(firstNonEmpty(sel.AttrOr("data-src", ""), sel.AttrOr("src", "")))
		return len(images) < 6
	})
	return images
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func collapseText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
