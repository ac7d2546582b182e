// Package scrape turns government web pages and PDF circulars into chunked
// knowledge documents ready for indexing.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
	"github.com/ledongthuc/pdf"

	"github.com/govlk/citizenport/internal/knowledge"
	"github.com/govlk/citizenport/internal/rag"
)

// Page is the cleaned text of one fetched source.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Config controls fetching behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	ChunkSize    int
	ChunkOverlap int
}

// Scraper fetches pages and produces knowledge documents.
type Scraper struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a scraper. Zero-value config fields get sane defaults.
func New(cfg Config, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "citizenport/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 50
	}
	return &Scraper{cfg: cfg, logger: logger}
}

// ScrapePage fetches one HTML page and extracts its readable text. Scripts,
// styles and chrome (nav, header, footer) are stripped before extraction.
func (s *Scraper) ScrapePage(ctx context.Context, pageURL string) (Page, error) {
	body, err := s.fetch(ctx, pageURL)
	if err != nil {
		return Page{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	doc.Find("script, style, nav, header, footer, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())

	stripped, err := doc.Html()
	if err != nil {
		return Page{}, fmt.Errorf("rendering %s: %w", pageURL, err)
	}

	parsed, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(stripped), parsed)
	text := article.TextContent
	if err != nil || strings.TrimSpace(text) == "" {
		// Readability gives up on sparse pages; fall back to the raw text.
		text = doc.Text()
	}
	if article.Title != "" {
		title = article.Title
	}

	return Page{URL: pageURL, Title: title, Text: CleanText(text)}, nil
}

// ScrapePDF fetches a PDF and extracts its plain text. The library reads
// from a file path, so the download goes through a temp file.
func (s *Scraper) ScrapePDF(ctx context.Context, pdfURL string) (Page, error) {
	body, err := s.fetch(ctx, pdfURL)
	if err != nil {
		return Page{}, err
	}

	tmp, err := os.CreateTemp("", "citizenport-*.pdf")
	if err != nil {
		return Page{}, fmt.Errorf("creating temp pdf: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(body); err != nil {
		return Page{}, fmt.Errorf("writing temp pdf: %w", err)
	}

	f, rdr, err := pdf.Open(tmp.Name())
	if err != nil {
		return Page{}, fmt.Errorf("opening pdf %s: %w", pdfURL, err)
	}
	defer func() {
		_ = f.Close()
	}()

	plain, err := rdr.GetPlainText()
	if err != nil {
		return Page{}, fmt.Errorf("extracting pdf text from %s: %w", pdfURL, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Page{}, fmt.Errorf("reading pdf text from %s: %w", pdfURL, err)
	}

	text := CleanText(buf.String())
	if text == "" {
		return Page{}, fmt.Errorf("no text extracted from %s", pdfURL)
	}

	return Page{URL: pdfURL, Title: pdfTitle(pdfURL), Text: text}, nil
}

// Scrape dispatches on the URL: .pdf goes through the PDF extractor,
// everything else is treated as HTML.
func (s *Scraper) Scrape(ctx context.Context, sourceURL string) (Page, error) {
	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(sourceURL)), ".pdf") {
		return s.ScrapePDF(ctx, sourceURL)
	}
	return s.ScrapePage(ctx, sourceURL)
}

// Documents chunks a scraped page into knowledge documents, one per chunk,
// carrying the page URL and title.
func (s *Scraper) Documents(page Page) ([]knowledge.Document, error) {
	chunks, err := rag.Chunk(page.Text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", page.URL, err)
	}

	docs := make([]knowledge.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = knowledge.Document{
			ID:      knowledge.DocID(page.URL, chunk),
			Text:    chunk,
			Source:  page.URL,
			Title:   page.Title,
			ChunkID: i,
		}
	}
	return docs, nil
}

// fetch downloads one URL with the configured user agent and timeout.
func (s *Scraper) fetch(ctx context.Context, target string) ([]byte, error) {
	var (
		body     []byte
		fetchErr error
	)

	c := colly.NewCollector(
		colly.UserAgent(s.cfg.UserAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.cfg.Timeout)
	c.Context = ctx

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, fetchErr)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fetching %s: empty response", target)
	}
	s.logger.Debug("fetched source", "url", target, "bytes", len(body))
	return body, nil
}

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	nonTextRE    = regexp.MustCompile(`[^\w\s.,:;()'"!?/-]`)
)

// CleanText collapses whitespace and drops control and decoration characters
// so chunk boundaries fall on real words.
func CleanText(text string) string {
	text = nonTextRE.ReplaceAllString(text, "")
	text = whitespaceRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func pdfTitle(pdfURL string) string {
	parsed, err := url.Parse(pdfURL)
	if err != nil {
		return pdfURL
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return pdfURL
	}
	return parts[len(parts)-1]
}
