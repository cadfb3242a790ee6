package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

const (
	defaultContentDir      = "content/pages"
	defaultContentCacheTTL = 5 * time.Minute
)

var (
	// ErrContentNotFound indicates no page exists for the slug.
	ErrContentNotFound = errors.New("content service: page not found")

	contentSlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// ContentServiceDeps bundles constructor inputs for the content service.
type ContentServiceDeps struct {
	// Dir holds one <slug>.md file per page.
	Dir      string
	CacheTTL time.Duration
	Clock    func() time.Time
}

type contentService struct {
	dir      string
	ttl      time.Duration
	clock    func() time.Time
	markdown goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]contentCacheEntry
}

type contentCacheEntry struct {
	page    ContentPage
	expires time.Time
}

type contentFrontMatter struct {
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Description string `yaml:"description"`
	UpdatedAt   string `yaml:"updated_at"`
}

var _ ContentService = (*contentService)(nil)

// NewContentService serves markdown pages from deps.Dir, caching rendered pages for CacheTTL.
func NewContentService(deps ContentServiceDeps) (ContentService, error) {
	dir := strings.TrimSpace(deps.Dir)
	if dir == "" {
		dir = defaultContentDir
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = defaultContentCacheTTL
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "table")
	policy.RequireNoFollowOnLinks(true)

	return &contentService{
		dir:      dir,
		ttl:      ttl,
		clock:    func() time.Time { return clock().UTC() },
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   policy,
		cache:    make(map[string]contentCacheEntry),
	}, nil
}

func (s *contentService) GetPage(ctx context.Context, slug string) (ContentPage, error) {
	if err := ctx.Err(); err != nil {
		return ContentPage{}, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !contentSlugPattern.MatchString(slug) {
		return ContentPage{}, ErrContentNotFound
	}

	now := s.clock()
	s.mu.RLock()
	entry, ok := s.cache[slug]
	s.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.page, nil
	}

	page, err := s.render(slug)
	if err != nil {
		return ContentPage{}, err
	}

	s.mu.Lock()
	s.cache[slug] = contentCacheEntry{page: page, expires: now.Add(s.ttl)}
	s.mu.Unlock()
	return page, nil
}

func (s *contentService) render(slug string) (ContentPage, error) {
	file := filepath.Join(s.dir, slug+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ContentPage{}, ErrContentNotFound
		}
		return ContentPage{}, fmt.Errorf("content service: read %s: %w", file, err)
	}

	fm, body := splitFrontMatter(string(data))
	var front contentFrontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return ContentPage{}, fmt.Errorf("content service: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(body), &buf); err != nil {
		return ContentPage{}, fmt.Errorf("content service: render %s: %w", file, err)
	}

	page := ContentPage{
		Slug:        slug,
		Title:       strings.TrimSpace(front.Title),
		Summary:     strings.TrimSpace(front.Summary),
		Description: strings.TrimSpace(front.Description),
		HTML:        strings.TrimSpace(s.policy.Sanitize(buf.String())),
		UpdatedAt:   parseContentDate(front.UpdatedAt),
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	if page.Description == "" {
		page.Description = page.Summary
	}
	if page.UpdatedAt.IsZero() {
		if info, err := os.Stat(file); err == nil {
			page.UpdatedAt = info.ModTime().UTC()
		}
	}
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
