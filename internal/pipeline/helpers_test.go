package pipeline

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// newTestConfig returns a config pointed at siteURL with pacing disabled.
func newTestConfig(siteURL string) *Config {
	cfg := DefaultConfig()
	cfg.Discovery.SiteURL = siteURL
	cfg.Assembly.Interval = 0
	cfg.Fetch.Timeout = 2 * time.Second
	cfg.Fetch.Client = &http.Client{Timeout: 2 * time.Second}
	return cfg
}

// articleHTML builds an article page: quote paragraphs sit outside the
// <article> container so only body paragraphs count toward the corpus.
func articleHTML(siteName string, body []string, quotes []string) string {
	var b strings.Builder
	b.WriteString("<html><head>")
	if siteName != "" {
		fmt.Fprintf(&b, `<meta property="og:site_name" content="%s">`, siteName)
	}
	b.WriteString("</head><body><article>")
	for _, p := range body {
		fmt.Fprintf(&b, "<p>%s</p>", p)
	}
	b.WriteString(`</article><aside class="quotes">`)
	for _, q := range quotes {
		fmt.Fprintf(&b, "<p>%s</p>", q)
	}
	b.WriteString("</aside></body></html>")
	return b.String()
}

// siteServer serves fixed pages by path and records every request.
type siteServer struct {
	*httptest.Server

	mu       sync.Mutex
	hits     []string
	inflight int
	maxIn    int
}

func newSiteServer(t *testing.T, pages map[string]string) *siteServer {
	t.Helper()

	s := &siteServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits = append(s.hits, r.URL.RequestURI())
		s.inflight++
		if s.inflight > s.maxIn {
			s.maxIn = s.inflight
		}
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			s.inflight--
			s.mu.Unlock()
		}()

		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *siteServer) requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hits...)
}

func (s *siteServer) maxInflight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxIn
}

func longParagraph(prefix string, n int) string {
	return prefix + strings.Repeat("x", n-len(prefix))
}

// minimalPDF builds a one-page PDF that shows text in Helvetica.
func minimalPDF(text string) []byte {
	escaped := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(text)
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escaped)

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}
