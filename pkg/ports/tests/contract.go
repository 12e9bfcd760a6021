package tests

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/ports"
)

// TemplateStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.TemplateStore.
// expected maps every name the store holds to its template text.
func TemplateStoreContractTest(t *testing.T, store ports.TemplateStore, expected map[string]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test Resolve (Success)
	t.Run("Resolve_Success", func(t *testing.T) {
		for name, want := range expected {
			got, err := store.Resolve(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error resolving %s: %v", name, err)
			}
			if got != want {
				t.Errorf("template mismatch for %s. got %q, want %q", name, got, want)
			}
		}
	})

	// 2. Test Resolve (NotFound)
	t.Run("Resolve_NotFound", func(t *testing.T) {
		_, err := store.Resolve(ctx, "non-existent-prompt")
		if !errors.Is(err, domain.ErrTemplateNotFound) {
			t.Errorf("expected ErrTemplateNotFound, got %v", err)
		}
	})

	// 3. Test List
	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing prompts: %v", err)
		}

		if len(names) != len(expected) {
			t.Errorf("expected %d prompts, got %d (%v)", len(expected), len(names), names)
		}

		if !sort.StringsAreSorted(names) {
			t.Errorf("names must be sorted: %v", names)
		}

		for _, name := range names {
			if _, ok := expected[name]; !ok {
				t.Errorf("unexpected prompt %s in list", name)
			}
		}
	})
}
