// Package catalog defines the contract for the host field-configuration
// catalog: the source of truth for which scripted field configurations
// exist and their naming metadata. The customization records themselves
// live in the store; the catalog only knows identities.
package catalog

import "context"

// ConfigContext identifies one configuration context of a scripted field.
type ConfigContext struct {
	ID          int64  // configuration identity
	FieldID     int64  // owning field
	FieldName   string
	ContextName string
}

// Catalog enumerates scripted field configurations and resolves metadata
// for a single one.
type Catalog interface {
	// FieldScriptConfigs returns every configuration context of every
	// field backed by scripted behavior.
	FieldScriptConfigs(ctx context.Context) ([]ConfigContext, error)

	// ConfigMetadata returns metadata for one configuration, or (nil, nil)
	// when the catalog has no such configuration.
	ConfigMetadata(ctx context.Context, id int64) (*ConfigContext, error)
}
