package prompt_test

import (
	"context"
	"testing"

	"github.com/cookie-jar-solutions/honey/pkg/adapters/memory"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type describedStore struct {
	*memory.Store
}

func (describedStore) Describe(_ context.Context, name string) (domain.PromptInfo, error) {
	return domain.PromptInfo{Name: name, Description: "documented"}, nil
}

func TestDescribe(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(map[string]string{
		"greet": "Hello {{ name }}{% if formal %}, sir{% endif %}",
		"plain": "No variables here",
	})

	info, err := prompt.Describe(ctx, store, "greet")
	require.NoError(t, err)
	assert.Equal(t, []domain.Argument{
		{Name: "formal", Required: true},
		{Name: "name", Required: true},
	}, info.Arguments)

	_, err = prompt.Describe(ctx, store, "missing")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	info, err = prompt.Describe(ctx, describedStore{store}, "greet")
	require.NoError(t, err)
	assert.Equal(t, "documented", info.Description)

	all, err := prompt.Catalog(ctx, store)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "greet", all[0].Name)
	assert.Empty(t, all[1].Arguments)
}
