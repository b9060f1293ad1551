package catalog

import "context"

// Static is a fixed in-memory Catalog.
type Static struct {
	contexts []ConfigContext
}

// Compile-time check that Static implements Catalog.
var _ Catalog = (*Static)(nil)

// NewStatic builds a catalog from a fixed list of configuration contexts.
func NewStatic(contexts ...ConfigContext) *Static {
	return &Static{contexts: contexts}
}

func (s *Static) FieldScriptConfigs(_ context.Context) ([]ConfigContext, error) {
	out := make([]ConfigContext, len(s.contexts))
	copy(out, s.contexts)
	return out, nil
}

func (s *Static) ConfigMetadata(_ context.Context, id int64) (*ConfigContext, error) {
	for _, cc := range s.contexts {
		if cc.ID == id {
			return &cc, nil
		}
	}
	return nil, nil
}
