// Package page loads the document a session drives and reports connection
// status into it.
package page

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/QuadTriangle/domlink/internal/dom"
)

const (
	SelectorMessages = "#msg-list"
	SelectorInput    = "#msg-txt"

	metaSockURL = `meta[name="sock-url"]`
	maxPageSize = 8 << 20
	maxRedirect = 5
)

//go:embed client.html
var clientHTML string

var clientTmpl = template.Must(template.New("client").Parse(clientHTML))

// Render returns the built-in client page with endpoint declared in its
// sock-url meta tag.
func Render(endpoint string) (string, error) {
	var buf bytes.Buffer
	if err := clientTmpl.Execute(&buf, struct{ SockURL string }{endpoint}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Load parses the page at src: the built-in page when src is empty, an
// http(s) URL, or a local file.
func Load(ctx context.Context, src string, timeout time.Duration) (*dom.Document, error) {
	switch {
	case src == "":
		markup, err := Render("")
		if err != nil {
			return nil, err
		}
		return dom.ParseString(markup)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return fetch(ctx, src, timeout)
	default:
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
		defer f.Close()
		return dom.Parse(io.LimitReader(f, maxPageSize))
	}
}

func fetch(ctx context.Context, url string, timeout time.Duration) (*dom.Document, error) {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirect {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: server returned status: %d", resp.StatusCode)
	}
	return dom.Parse(io.LimitReader(resp.Body, maxPageSize))
}

// SockURL returns the endpoint the page declares, or "".
func SockURL(doc *dom.Document) string {
	el := doc.Query(metaSockURL)
	if el == nil {
		return ""
	}
	v, _ := el.Attr("content")
	return strings.TrimSpace(v)
}

// SetSockURL records the endpoint actually used.
func SetSockURL(doc *dom.Document, endpoint string) {
	if el := doc.Query(metaSockURL); el != nil {
		_ = el.SetAttr("content", endpoint)
	}
}
