package ports

import (
	"context"
	"testing"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTemplateWriterContract runs a suite of tests to verify that a TemplateWriter
// implementation adheres to the defined interface contract.
// The store is expected to be empty.
func RunTemplateWriterContract(t *testing.T, store TemplateWriter) {
	ctx := context.Background()

	t.Run("Save and Resolve", func(t *testing.T) {
		// 1. Save
		require.NoError(t, store.Save(ctx, "contract.greet", "Hello, {{ name }}!"))

		// 2. Resolve
		text, err := store.Resolve(ctx, "contract.greet")
		require.NoError(t, err)
		assert.Equal(t, "Hello, {{ name }}!", text)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "contract.greet", "Hi {{ name }}"))

		text, err := store.Resolve(ctx, "contract.greet")
		require.NoError(t, err)
		assert.Equal(t, "Hi {{ name }}", text)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "contract.alpha", "a"))

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"contract.alpha", "contract.greet"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "contract.greet"))
		require.NoError(t, store.Delete(ctx, "contract.greet"), "deleting twice must be a no-op")

		_, err := store.Resolve(ctx, "contract.greet")
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("Empty body", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "contract.empty", ""))

		text, err := store.Resolve(ctx, "contract.empty")
		require.NoError(t, err)
		assert.Empty(t, text)
	})
}
