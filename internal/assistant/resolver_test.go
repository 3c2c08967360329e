package assistant

import (
	"context"
	"testing"

	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
)

func TestResolver_SubstringTierWinsFirst(t *testing.T) {
	coffee := testProduct("Coffee Beans", "SKU-COFFEE", 9, 4)
	tea := testProduct("Tea Leaves", "SKU-TEA", 30, 2)
	repo := &fakeCatalog{products: []*models.Product{coffee, tea}, ranked: tea}

	resolver := NewResolver(repo, testAssistantConfig())
	got, err := resolver.Resolve(context.Background(), "coffee")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || got.ID != coffee.ID {
		t.Fatalf("expected substring match on Coffee Beans, got %+v", got)
	}
}

func TestResolver_RankedTierWhenNoSubstring(t *testing.T) {
	tea := testProduct("Tea Leaves", "SKU-TEA", 30, 2)
	repo := &fakeCatalog{products: []*models.Product{tea}, ranked: tea}

	resolver := NewResolver(repo, testAssistantConfig())
	got, err := resolver.Resolve(context.Background(), "loose leaf infusion")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || got.ID != tea.ID {
		t.Fatalf("expected ranked match, got %+v", got)
	}
}

func TestResolver_SimilarityTierForMisspelling(t *testing.T) {
	coffee := testProduct("Coffee", "SKU-COFFEE", 9, 4)
	sugar := testProduct("Sugar", "SKU-SUGAR", 50, 1)
	repo := &fakeCatalog{products: []*models.Product{coffee, sugar}}

	resolver := NewResolver(repo, testAssistantConfig())
	got, err := resolver.Resolve(context.Background(), "cofee")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || got.ID != coffee.ID {
		t.Fatalf("expected fuzzy match on Coffee, got %+v", got)
	}
}

// Repeated resolution over the same snapshot must return the same
// product every time.
func TestResolver_Deterministic(t *testing.T) {
	coffee := testProduct("Coffee", "SKU-COFFEE", 9, 4)
	toffee := testProduct("Toffee", "SKU-TOFFEE", 12, 1)
	repo := &fakeCatalog{products: []*models.Product{coffee, toffee}}

	resolver := NewResolver(repo, testAssistantConfig())
	first, err := resolver.Resolve(context.Background(), "cofee")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first == nil {
		t.Fatal("expected a match for misspelled query")
	}
	for i := 0; i < 10; i++ {
		again, err := resolver.Resolve(context.Background(), "cofee")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if again == nil || again.ID != first.ID {
			t.Fatalf("run %d resolved %+v, want %s", i, again, first.Name)
		}
	}
}

func TestResolver_CategoryFallbackTier(t *testing.T) {
	soda := testProduct("Cola", "SKU-COLA", 80, 6)
	soda.Category.Name = "Beverages"
	repo := &fakeCatalog{products: []*models.Product{soda}}

	resolver := NewResolver(repo, testAssistantConfig())
	got, err := resolver.Resolve(context.Background(), "bevrages")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || got.ID != soda.ID {
		t.Fatalf("expected category fallback to surface Cola, got %+v", got)
	}
}

func TestResolver_NoMatch(t *testing.T) {
	repo := &fakeCatalog{products: []*models.Product{testProduct("Cola", "SKU-COLA", 80, 6)}}

	resolver := NewResolver(repo, testAssistantConfig())
	got, err := resolver.Resolve(context.Background(), "zzzzqqqq")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestResolver_EmptyQuery(t *testing.T) {
	repo := &fakeCatalog{}
	resolver := NewResolver(repo, testAssistantConfig())
	got, err := resolver.Resolve(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for blank query, got %+v", got)
	}
}
