package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writePage(t *testing.T, dir, slug, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, slug+".md"), []byte(body), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
}

func TestContentServiceRendersMarkdown(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "shipping", `---
title: Shipping Policy
summary: How idols reach you
updated_at: 2024-04-01
---
# Delivery

Idols are crated in **wood**.

<script>alert("x")</script>

[Track](https://example.com/track)
`)

	svc, err := NewContentService(ContentServiceDeps{Dir: dir})
	if err != nil {
		t.Fatalf("NewContentService: %v", err)
	}

	page, err := svc.GetPage(context.Background(), "Shipping")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.Title != "Shipping Policy" || page.Summary != "How idols reach you" {
		t.Fatalf("unexpected front matter %+v", page)
	}
	if page.Description != page.Summary {
		t.Fatalf("expected description to fall back to summary, got %q", page.Description)
	}
	if !page.UpdatedAt.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected updated_at %v", page.UpdatedAt)
	}
	if !strings.Contains(page.HTML, "<h1") || !strings.Contains(page.HTML, "<strong>wood</strong>") {
		t.Fatalf("expected rendered markdown, got %s", page.HTML)
	}
	if strings.Contains(page.HTML, "<script") || strings.Contains(page.HTML, "alert") {
		t.Fatalf("expected scripts stripped, got %s", page.HTML)
	}
	if !strings.Contains(page.HTML, `rel="nofollow"`) {
		t.Fatalf("expected nofollow links, got %s", page.HTML)
	}
}

func TestContentServiceCachesUntilExpiry(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "about", "First version")

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, err := NewContentService(ContentServiceDeps{
		Dir:      dir,
		CacheTTL: time.Minute,
		Clock:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewContentService: %v", err)
	}

	page, err := svc.GetPage(context.Background(), "about")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.Title != "About" || !strings.Contains(page.HTML, "First version") {
		t.Fatalf("unexpected page %+v", page)
	}

	writePage(t, dir, "about", "Second version")
	page, _ = svc.GetPage(context.Background(), "about")
	if !strings.Contains(page.HTML, "First version") {
		t.Fatalf("expected cached page, got %s", page.HTML)
	}

	now = now.Add(2 * time.Minute)
	page, _ = svc.GetPage(context.Background(), "about")
	if !strings.Contains(page.HTML, "Second version") {
		t.Fatalf("expected refreshed page, got %s", page.HTML)
	}
}

func TestContentServiceNotFound(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewContentService(ContentServiceDeps{Dir: dir})
	if err != nil {
		t.Fatalf("NewContentService: %v", err)
	}

	for _, slug := range []string{"missing", "../secrets", "", "our stores"} {
		if _, err := svc.GetPage(context.Background(), slug); !errors.Is(err, ErrContentNotFound) {
			t.Fatalf("%q: expected ErrContentNotFound, got %v", slug, err)
		}
	}
}

func TestContentServiceRejectsBadFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "terms", "---\ntitle: [unclosed\n---\nbody")
	svc, err := NewContentService(ContentServiceDeps{Dir: dir})
	if err != nil {
		t.Fatalf("NewContentService: %v", err)
	}
	_, err = svc.GetPage(context.Background(), "terms")
	if err == nil || errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestPrettifySlug(t *testing.T) {
	if got := prettifySlug("our-stores"); got != "Our Stores" {
		t.Fatalf("expected Our Stores, got %q", got)
	}
}
