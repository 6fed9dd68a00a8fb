package classification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"tender-backend/internal/session"
)

const relationsPath = "/Tender/GetRelationsDetailsViewComponenet"

// Client fetches classification details from the procurement portal.
// The portal renders the data as an HTML fragment, so the client parses
// the list items instead of consuming a JSON API.
type Client struct {
	baseURL    string
	sessions   *session.Store
	httpClient *http.Client
}

// NewClient constructs a portal client. Requests authenticate with the
// cookies currently held by the session store.
func NewClient(baseURL string, sessions *session.Store) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sessions: sessions,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve fetches and parses the classification for one tender.
func (c *Client) Resolve(ctx context.Context, tenderID string) (Result, error) {
	if strings.TrimSpace(tenderID) == "" {
		return Result{}, ErrNotFound
	}

	endpoint := c.baseURL + relationsPath + "?tenderIdStr=" + url.QueryEscape(tenderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; tender-backend)")
	for _, cookie := range c.sessions.Cookies() {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return Result{}, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	result := parseRelationsPage(body)
	result.ItemID = tenderID
	return result, nil
}

// parseRelationsPage walks the portal's list-group markup and collects
// every classification field and bundle name it finds. A tender can
// carry several of each.
func parseRelationsPage(page []byte) Result {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return Result{Label: LabelUnspecified, Bundles: []string{}}
	}

	var classifications []string
	bundles := []string{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" && hasClass(n, "list-group-item") {
			title := textOfClass(n, "etd-item-title")
			value := textOfClass(n, "etd-item-info")
			if title != "" && value != "" {
				switch {
				case strings.Contains(title, "مجال التصنيف"):
					if !contains(classifications, value) {
						classifications = append(classifications, value)
					}
				case strings.Contains(title, "الحزمة"):
					if !contains(bundles, value) {
						bundles = append(bundles, value)
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if len(classifications) == 0 {
		return Result{Label: LabelUnspecified, RequiresClassification: false, Bundles: bundles}
	}

	label := strings.Join(classifications, ", ")
	return Result{
		Label:                  label,
		RequiresClassification: !strings.Contains(label, labelNotRequired),
		Bundles:                bundles,
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// textOfClass finds the first descendant div carrying the given class
// and returns its trimmed text content.
func textOfClass(n *html.Node, class string) string {
	var found *html.Node
	var search func(*html.Node)
	search = func(node *html.Node) {
		if found != nil {
			return
		}
		if node.Type == html.ElementNode && node.Data == "div" && hasClass(node, class) {
			found = node
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			search(child)
		}
	}
	search(n)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(textContent(found))
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(textContent(child))
	}
	return b.String()
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
