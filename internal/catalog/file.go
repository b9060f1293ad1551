package catalog

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileDoc is the top-level TOML catalog document.
type fileDoc struct {
	Fields []fileField `toml:"fields"`
}

type fileField struct {
	ID      int64        `toml:"id"`
	Name    string       `toml:"name"`
	Configs []fileConfig `toml:"configs"`
}

type fileConfig struct {
	ID      int64  `toml:"id"`
	Context string `toml:"context"`
}

// File is a Catalog backed by a TOML file, loaded once at startup.
type File struct {
	contexts []ConfigContext
	byID     map[int64]ConfigContext
}

// Compile-time check that File implements Catalog.
var _ Catalog = (*File)(nil)

// LoadFile reads a TOML catalog file. Configuration IDs must be unique
// across all fields.
func LoadFile(path string) (*File, error) {
	var doc fileDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	f := &File{byID: make(map[int64]ConfigContext)}
	for _, field := range doc.Fields {
		for _, cfg := range field.Configs {
			cc := ConfigContext{
				ID:          cfg.ID,
				FieldID:     field.ID,
				FieldName:   field.Name,
				ContextName: cfg.Context,
			}
			if _, dup := f.byID[cc.ID]; dup {
				return nil, fmt.Errorf("catalog %s: duplicate config id %d", path, cc.ID)
			}
			f.byID[cc.ID] = cc
			f.contexts = append(f.contexts, cc)
		}
	}
	return f, nil
}

func (f *File) FieldScriptConfigs(_ context.Context) ([]ConfigContext, error) {
	out := make([]ConfigContext, len(f.contexts))
	copy(out, f.contexts)
	return out, nil
}

func (f *File) ConfigMetadata(_ context.Context, id int64) (*ConfigContext, error) {
	cc, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &cc, nil
}
