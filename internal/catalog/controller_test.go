package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/marble-idols/storefront/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewControllerRequiresFetcher(t *testing.T) {
	if _, err := NewController(nil); !errors.Is(err, ErrNoProductFetcher) {
		t.Fatalf("expected ErrNoProductFetcher, got %v", err)
	}
}

func TestControllerLoadsProductsAndFacetsTogether(t *testing.T) {
	records := numbered(15)
	records[3].Featured = true

	productsStarted := make(chan struct{})
	facetsStarted := make(chan struct{})

	ctrl, err := NewController(
		func(ctx context.Context) ([]domain.Product, error) {
			close(productsStarted)
			<-facetsStarted
			return records, nil
		},
		WithFacets(func(ctx context.Context) (Facets, error) {
			close(facetsStarted)
			<-productsStarted
			return Facets{Materials: []domain.Material{{ID: "m1", Title: "Brass", Slug: "brass"}}}, nil
		}),
	)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if ctrl.Status() != StatusLoading {
		t.Fatalf("expected loading, got %s", ctrl.Status())
	}

	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if ctrl.Status() != StatusReady {
		t.Fatalf("expected ready, got %s", ctrl.Status())
	}
	if len(ctrl.Facets().Materials) != 1 {
		t.Fatalf("expected facets to be held, got %+v", ctrl.Facets())
	}

	view := ctrl.View(WithPage(domain.DefaultFilterState(), 2))
	if view.Total != 15 || view.TotalPages != 2 || len(view.Items) != 3 {
		t.Fatalf("unexpected view totals: total=%d pages=%d items=%d", view.Total, view.TotalPages, len(view.Items))
	}
	if view.Query != "page=2" {
		t.Fatalf("expected query page=2, got %q", view.Query)
	}

	first := ctrl.View(domain.DefaultFilterState())
	if first.Items[0].ID != "03" {
		t.Fatalf("expected featured product first, got %s", first.Items[0].ID)
	}
}

func TestControllerFailureDegradesToEmptyReadyView(t *testing.T) {
	boom := errors.New("record store offline")
	ctrl, err := NewController(
		func(ctx context.Context) ([]domain.Product, error) {
			return numbered(5), nil
		},
		WithFacets(func(ctx context.Context) (Facets, error) {
			return Facets{}, boom
		}),
	)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	if err := ctrl.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}

	view := ctrl.View(domain.DefaultFilterState())
	if view.Status != StatusReady {
		t.Fatalf("expected ready, got %s", view.Status)
	}
	if view.Total != 0 || len(view.Items) != 0 || view.Items == nil {
		t.Fatalf("expected empty non-nil items, got %#v", view.Items)
	}
	if !errors.Is(view.Err, boom) {
		t.Fatalf("expected view error, got %v", view.Err)
	}
}

func TestControllerLoadIsOnce(t *testing.T) {
	var calls atomic.Int32
	ctrl, err := NewController(func(ctx context.Context) ([]domain.Product, error) {
		calls.Add(1)
		return numbered(2), nil
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := ctrl.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single fetch, got %d", got)
	}
}

func TestControllerViewBeforeLoad(t *testing.T) {
	ctrl, err := NewController(func(ctx context.Context) ([]domain.Product, error) {
		return numbered(2), nil
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	view := ctrl.View(domain.DefaultFilterState())
	if view.Status != StatusLoading || view.Total != 0 {
		t.Fatalf("expected empty loading view, got %+v", view)
	}
}

func TestControllerRecordsAreCopied(t *testing.T) {
	ctrl, err := NewController(func(ctx context.Context) ([]domain.Product, error) {
		return numbered(3), nil
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	records := ctrl.Records()
	records[0].ID = "changed"

	if diff := cmp.Diff([]string{"00", "01", "02"}, ids(ctrl.Records())); diff != "" {
		t.Fatalf("held records changed (-want +got):\n%s", diff)
	}
}

func TestFacetsFromProducts(t *testing.T) {
	products := []domain.Product{
		product("1", material("brass"), style(domain.PaintingStyleHalf)),
		product("2", material("marble"), style(domain.PaintingStyleFull)),
		product("3", material("brass"), style(domain.PaintingStyleHalf)),
		product("4"),
	}

	facets := FacetsFromProducts(products)

	want := Facets{
		Materials: []domain.Material{
			{ID: "mat-brass", Title: "brass", Slug: "brass"},
			{ID: "mat-marble", Title: "marble", Slug: "marble"},
		},
		Styles: []domain.PaintingStyle{domain.PaintingStyleHalf, domain.PaintingStyleFull},
	}
	if diff := cmp.Diff(want, facets); diff != "" {
		t.Fatalf("unexpected facets (-want +got):\n%s", diff)
	}
}
