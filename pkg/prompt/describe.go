package prompt

import (
	"context"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/ports"
	"github.com/cookie-jar-solutions/honey/pkg/render"
)

// Describe documents the prompt stored under name. Stores that carry their own
// documentation are asked directly; otherwise the arguments are the variables
// the template reads, all marked required.
func Describe(ctx context.Context, store ports.TemplateStore, name string) (domain.PromptInfo, error) {
	if d, ok := store.(ports.Describer); ok {
		return d.Describe(ctx, name)
	}

	text, err := store.Resolve(ctx, name)
	if err != nil {
		return domain.PromptInfo{}, err
	}

	info := domain.PromptInfo{Name: name}
	for _, v := range render.Variables(text) {
		info.Arguments = append(info.Arguments, domain.Argument{Name: v, Required: true})
	}
	return info, nil
}

// Catalog describes every prompt in store, in List order.
func Catalog(ctx context.Context, store ports.TemplateStore) ([]domain.PromptInfo, error) {
	names, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]domain.PromptInfo, 0, len(names))
	for _, name := range names {
		info, err := Describe(ctx, store, name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
