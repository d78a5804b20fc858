package adapters

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/normalize"
)

const (
	nsAtom    = "http://www.w3.org/2005/Atom"
	nsContent = "http://purl.org/rss/1.0/modules/content/"
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsMedia   = "http://search.yahoo.com/mrss/"

	maxFeedBytes = 10 << 20
)

// rssDocument covers RSS 2.0 (<rss><channel><item>) and RSS 1.0
// (<rdf:RDF><item>), whose items share one shape
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title           string         `xml:"title"`
	Link            string         `xml:"link"`
	GUID            rssGUID        `xml:"guid"`
	Description     string         `xml:"description"`
	ContentEncoded  string         `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	PubDate         string         `xml:"pubDate"`
	DCDate          string         `xml:"http://purl.org/dc/elements/1.1/ date"`
	Categories      []string       `xml:"category"`
	DCSubjects      []string       `xml:"http://purl.org/dc/elements/1.1/ subject"`
	MediaThumbnails []mediaRef     `xml:"http://search.yahoo.com/mrss/ thumbnail"`
	MediaContents   []mediaRef     `xml:"http://search.yahoo.com/mrss/ content"`
	MediaGroups     []mediaGroupEl `xml:"http://search.yahoo.com/mrss/ group"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr"`
}

type atomDocument struct {
	Entries []atomEntry `xml:"http://www.w3.org/2005/Atom entry"`
}

type atomEntry struct {
	Title           atomText       `xml:"http://www.w3.org/2005/Atom title"`
	Links           []atomLink     `xml:"http://www.w3.org/2005/Atom link"`
	Published       string         `xml:"http://www.w3.org/2005/Atom published"`
	Updated         string         `xml:"http://www.w3.org/2005/Atom updated"`
	Summary         atomText       `xml:"http://www.w3.org/2005/Atom summary"`
	Content         atomText       `xml:"http://www.w3.org/2005/Atom content"`
	Categories      []atomCategory `xml:"http://www.w3.org/2005/Atom category"`
	MediaThumbnails []mediaRef     `xml:"http://search.yahoo.com/mrss/ thumbnail"`
	MediaContents   []mediaRef     `xml:"http://search.yahoo.com/mrss/ content"`
	MediaGroups     []mediaGroupEl `xml:"http://search.yahoo.com/mrss/ group"`
}

type atomText struct {
	Type  string `xml:"type,attr"`
	Text  string `xml:",chardata"`
	Inner string `xml:",innerxml"`
}

// value returns the text with markup removed. Escaped html arrives as
// character data, inline xhtml only as inner XML.
func (t atomText) value() string {
	if strings.EqualFold(t.Type, "xhtml") {
		return normalize.CleanHTML(t.Inner)
	}
	return normalize.CleanHTML(t.Text)
}

// plain is like value but keeps text constructs verbatim, so a title such
// as "Using <Button>" survives
func (t atomText) plain() string {
	switch strings.ToLower(t.Type) {
	case "html", "xhtml":
		return t.value()
	}
	return normalize.CollapseWhitespace(t.Text)
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type atomCategory struct {
	Term  string `xml:"term,attr"`
	Label string `xml:"label,attr"`
}

type mediaRef struct {
	URL    string `xml:"url,attr"`
	Medium string `xml:"medium,attr"`
	Type   string `xml:"type,attr"`
}

type mediaGroupEl struct {
	Thumbnails []mediaRef `xml:"http://search.yahoo.com/mrss/ thumbnail"`
	Contents   []mediaRef `xml:"http://search.yahoo.com/mrss/ content"`
}

// FeedConfig configures a FeedAdapter
type FeedConfig struct {
	FeedURL   string
	UserAgent string
}

// FeedAdapter reads RSS 2.0, RSS 1.0 and Atom feeds
type FeedAdapter struct {
	config FeedConfig
	client *http.Client
	logger *core.Logger
}

// NewFeedAdapter creates a new feed adapter
func NewFeedAdapter(config FeedConfig, client *http.Client, logger *core.Logger) *FeedAdapter {
	return &FeedAdapter{
		config: config,
		client: client,
		logger: logger,
	}
}

// Crawl fetches the feed and maps every well-formed entry. Entries without
// a title or link are skipped with a warning.
func (f *FeedAdapter) Crawl(ctx context.Context) ([]models.RawArticle, error) {
	body, err := f.fetch(ctx)
	if err != nil {
		return nil, core.NewSourceFetchError(f.config.FeedURL, err)
	}

	articles, err := f.parse(body)
	if err != nil {
		return nil, core.NewSourceFetchError(f.config.FeedURL, err)
	}

	f.logger.Info("Fetched feed", "url", f.config.FeedURL, "articles", len(articles))
	return articles, nil
}

func (f *FeedAdapter) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/rdf+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// parse sniffs the root element and decodes the matching document shape
func (f *FeedAdapter) parse(body []byte) ([]models.RawArticle, error) {
	dec := newFeedDecoder(body)

	root, err := firstStartElement(dec)
	if err != nil {
		return nil, fmt.Errorf("unable to parse feed: %w", err)
	}

	switch strings.ToLower(root.Name.Local) {
	case "rss", "rdf":
		var doc rssDocument
		if err := dec.DecodeElement(&doc, &root); err != nil {
			return nil, fmt.Errorf("unable to parse RSS feed: %w", err)
		}
		items := append(doc.Channel.Items, doc.Items...)
		return f.mapEntries(len(items), func(i int) (models.RawArticle, error) {
			return mapRSSItem(items[i])
		}), nil
	case "feed":
		var doc atomDocument
		if err := dec.DecodeElement(&doc, &root); err != nil {
			return nil, fmt.Errorf("unable to parse Atom feed: %w", err)
		}
		return f.mapEntries(len(doc.Entries), func(i int) (models.RawArticle, error) {
			return mapAtomEntry(doc.Entries[i])
		}), nil
	default:
		return nil, fmt.Errorf("unable to parse feed: unexpected root element <%s>", root.Name.Local)
	}
}

func (f *FeedAdapter) mapEntries(n int, mapOne func(int) (models.RawArticle, error)) []models.RawArticle {
	articles := make([]models.RawArticle, 0, n)
	for i := 0; i < n; i++ {
		article, err := mapOne(i)
		if err != nil {
			f.logger.Warn("Skipping feed entry", "url", f.config.FeedURL, "index", i, "error", err)
			continue
		}
		articles = append(articles, article)
	}
	return articles
}

func newFeedDecoder(body []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

func firstStartElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func mapRSSItem(item rssItem) (models.RawArticle, error) {
	title := normalize.CollapseWhitespace(item.Title)
	if title == "" {
		return models.RawArticle{}, core.NewEntryParseError("entry has no title", nil)
	}

	link := strings.TrimSpace(item.Link)
	if link == "" && !strings.EqualFold(item.GUID.IsPermaLink, "false") && isHTTPURL(item.GUID.Value) {
		link = strings.TrimSpace(item.GUID.Value)
	}
	if link == "" {
		return models.RawArticle{}, core.NewEntryParseError(fmt.Sprintf("entry %q has no link", title), nil)
	}

	summary := normalize.Truncate(normalize.CleanHTML(item.Description), normalize.SummaryLength)
	content := summary
	if encoded := normalize.CleanHTML(item.ContentEncoded); encoded != "" {
		content = encoded
	}

	return models.RawArticle{
		Title:        title,
		URL:          link,
		PublishedAt:  normalize.FirstDateTime(item.PubDate, item.DCDate),
		Summary:      summary,
		Content:      content,
		ThumbnailURL: thumbnail(item.MediaThumbnails, item.MediaContents, item.MediaGroups),
		Tags:         terms(append(append([]string(nil), item.Categories...), item.DCSubjects...)),
	}, nil
}

func mapAtomEntry(entry atomEntry) (models.RawArticle, error) {
	title := entry.Title.plain()
	if title == "" {
		return models.RawArticle{}, core.NewEntryParseError("entry has no title", nil)
	}

	link := atomAlternate(entry.Links)
	if link == "" {
		return models.RawArticle{}, core.NewEntryParseError(fmt.Sprintf("entry %q has no link", title), nil)
	}

	summary := normalize.Truncate(entry.Summary.value(), normalize.SummaryLength)
	content := summary
	if body := entry.Content.value(); body != "" {
		content = body
	}

	var categories []string
	for _, c := range entry.Categories {
		if c.Term != "" {
			categories = append(categories, c.Term)
		} else {
			categories = append(categories, c.Label)
		}
	}

	return models.RawArticle{
		Title:        title,
		URL:          link,
		PublishedAt:  normalize.FirstDateTime(entry.Published, entry.Updated),
		Summary:      summary,
		Content:      content,
		ThumbnailURL: thumbnail(entry.MediaThumbnails, entry.MediaContents, entry.MediaGroups),
		Tags:         terms(categories),
	}, nil
}

func atomAlternate(links []atomLink) string {
	for _, link := range links {
		if (link.Rel == "" || link.Rel == "alternate") && strings.TrimSpace(link.Href) != "" {
			return strings.TrimSpace(link.Href)
		}
	}
	for _, link := range links {
		if href := strings.TrimSpace(link.Href); href != "" && link.Rel != "self" && link.Rel != "replies" {
			return href
		}
	}
	return ""
}

// thumbnail prefers media:thumbnail, then image media:content, at item
// level before media:group
func thumbnail(thumbs, contents []mediaRef, groups []mediaGroupEl) string {
	for _, g := range groups {
		thumbs = append(thumbs, g.Thumbnails...)
		contents = append(contents, g.Contents...)
	}
	for _, t := range thumbs {
		if isHTTPURL(t.URL) {
			return strings.TrimSpace(t.URL)
		}
	}
	for _, c := range contents {
		if !isHTTPURL(c.URL) {
			continue
		}
		if c.Medium == "" || c.Medium == "image" || strings.HasPrefix(c.Type, "image/") {
			return strings.TrimSpace(c.URL)
		}
	}
	return ""
}

func terms(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func isHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
