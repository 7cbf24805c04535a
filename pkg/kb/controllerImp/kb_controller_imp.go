package controllerImp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farmtech/pkg/kb/controller"
	"farmtech/pkg/kb/service"
	"farmtech/pkg/kb/serviceImp"
)

const searchLimit = 6

type KBCtrl struct {
	s        service.KBService
	allow    map[string]bool
	maxBytes int
	httpc    *http.Client
	log      *zap.Logger
}

type ingestReq struct {
	Title     string  `json:"title"`
	Tags      string  `json:"tags"`
	Text      string  `json:"text"`
	SourceURL *string `json:"source_url"`
}

type ingestURLReq struct {
	URL   string `json:"url"`
	Tags  string `json:"tags"`
	Title string `json:"title"`
}

// New wires the KB handlers. URL ingestion only fetches hosts listed in
// allowHosts and reads at most maxBytes per page.
func New(s service.KBService, allowHosts []string, maxBytes int, httpc *http.Client, log *zap.Logger) controller.KBController {
	allow := map[string]bool{}
	for _, h := range allowHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allow[h] = true
		}
	}
	if maxBytes <= 0 {
		maxBytes = 1500000
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 20 * time.Second}
	}
	return &KBCtrl{s: s, allow: allow, maxBytes: maxBytes, httpc: httpc, log: log.Named("kb")}
}

func (h *KBCtrl) IngestText(c echo.Context) error {
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text is required"})
	}
	src := ""
	if req.SourceURL != nil {
		src = strings.TrimSpace(*req.SourceURL)
	}

	doc, n, err := h.s.UpsertDocument(c.Request().Context(), strings.TrimSpace(req.Title), strings.TrimSpace(req.Tags), req.Text, src)
	if err != nil {
		return h.ingestFailed(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"doc": doc, "chunks": n})
}

func (h *KBCtrl) IngestURL(c echo.Context) error {
	var body ingestURLReq
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url required"})
	}
	u, err := url.Parse(strings.TrimSpace(body.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad url"})
	}
	if !h.allow[strings.ToLower(u.Hostname())] {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "domain not allowed"})
	}

	ctx := c.Request().Context()
	txt, title, err := fetchMainText(ctx, h.httpc, u.String(), h.maxBytes)
	if err != nil {
		h.log.Warn("fetch page failed", zap.String("url", u.String()), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	if t := strings.TrimSpace(body.Title); t != "" {
		title = t
	}
	if title == "" {
		title = u.Host
	}

	doc, n, err := h.s.UpsertDocument(ctx, title, strings.TrimSpace(body.Tags), txt, u.String())
	if err != nil {
		return h.ingestFailed(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"doc": doc, "chunks": n})
}

func (h *KBCtrl) ingestFailed(c echo.Context, err error) error {
	if errors.Is(err, serviceImp.ErrEmptyDocument) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	h.log.Error("kb ingest failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "ingest failed"})
}

func (h *KBCtrl) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q required"})
	}
	hits, err := h.s.Search(c.Request().Context(), q, searchLimit)
	if err != nil {
		h.log.Error("kb search failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "search failed"})
	}
	if hits == nil {
		hits = []service.Hit{}
	}
	return c.JSON(http.StatusOK, hits)
}

func (h *KBCtrl) ListDocs(c echo.Context) error {
	ds, err := h.s.ListDocs(c.Request().Context())
	if err != nil {
		h.log.Error("kb list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, ds)
}

// --- helpers ---

func fetchMainText(ctx context.Context, client *http.Client, u string, maxBytes int) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	if resp.ContentLength > int64(maxBytes) {
		return "", "", fmt.Errorf("page too large")
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBytes)))
	if err != nil {
		return "", "", err
	}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ct, "text/html") && !strings.Contains(ct, "text/plain") {
		return "", "", fmt.Errorf("unsupported content-type: %s", ct)
	}
	if strings.Contains(ct, "text/plain") {
		return string(b), guessTitleFromText(string(b)), nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	// main/article if present, else the whole page
	var parts []string
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	sel.Find("h1,h2,h3,p,li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return cleanWhitespace(strings.Join(parts, "\n")), title, nil
}

var wsRX = regexp.MustCompile(`[ \t]+\n`)

func cleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return wsRX.ReplaceAllString(s, "\n")
}

func guessTitleFromText(s string) string {
	line := strings.SplitN(strings.TrimSpace(s), "\n", 2)[0]
	if r := []rune(line); len(r) > 120 {
		line = string(r[:120])
	}
	return line
}
