// Package service implements the field-config use cases: merged reads, the
// transactional-ish write path, and the hot script-resolution path.
package service

import (
	"context"
	"strconv"

	"github.com/groblegark/fieldscript/internal/audit"
	"github.com/groblegark/fieldscript/internal/catalog"
	"github.com/groblegark/fieldscript/internal/changelog"
	"github.com/groblegark/fieldscript/internal/events"
	"github.com/groblegark/fieldscript/internal/model"
	"github.com/groblegark/fieldscript/internal/parser"
	"github.com/groblegark/fieldscript/internal/scriptcache"
	"github.com/groblegark/fieldscript/internal/store"
)

// Service orchestrates the store, cache, catalog, parser, changelog, audit
// sink and recompute notifier. It is stateless apart from the cache.
type Service struct {
	store     store.Store
	catalog   catalog.Catalog
	parser    parser.Parser
	cache     *scriptcache.Cache
	changelog *changelog.Recorder
	audit     audit.Recorder
	notifier  events.Notifier
}

// New wires a Service from its collaborators.
func New(
	st store.Store,
	cat catalog.Catalog,
	p parser.Parser,
	cache *scriptcache.Cache,
	rec *changelog.Recorder,
	auditRec audit.Recorder,
	notifier events.Notifier,
) *Service {
	return &Service{
		store:     st,
		catalog:   cat,
		parser:    p,
		cache:     cache,
		changelog: rec,
		audit:     auditRec,
		notifier:  notifier,
	}
}

// ListAll returns a merged view for every configuration context of every
// scripted field, history included.
func (s *Service) ListAll(ctx context.Context) ([]*model.ConfigView, error) {
	contexts, err := s.catalog.FieldScriptConfigs(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*model.ConfigView, 0, len(contexts))
	for _, cc := range contexts {
		cfg, err := s.store.FindFieldConfig(ctx, cc.ID)
		if err != nil {
			return nil, err
		}
		view, err := s.buildView(ctx, cc, cfg, true)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns the merged view for one configuration. The catalog is
// authoritative: an unknown ID is a NotFoundError even though the read
// path would happily serve a default script for it.
func (s *Service) Get(ctx context.Context, id int64, includeChangelogs bool) (*model.ConfigView, error) {
	meta, err := s.catalog.ConfigMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, &model.NotFoundError{ID: id}
	}

	cfg, err := s.store.FindFieldConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, *meta, cfg, includeChangelogs)
}

// Update applies one edit: validate, create-or-update the record, append
// history, audit, invalidate the cache, signal the owning field, and return
// the fresh view. Once the record write succeeds, later failures surface to
// the caller but earlier steps are not rolled back; there is no cross-store
// transaction to lean on.
func (s *Service) Update(ctx context.Context, actor string, id int64, form *model.ConfigForm) (*model.ConfigView, error) {
	meta, err := s.catalog.ConfigMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, &model.NotFoundError{ID: id}
	}

	cfg, err := s.store.FindFieldConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	isNew := cfg == nil

	if err := s.validate(ctx, isNew, form); err != nil {
		return nil, err
	}

	var action audit.Action
	if isNew {
		cfg = &model.FieldConfig{
			ID:         id,
			ScriptBody: form.ScriptBody,
			Cacheable:  form.Cacheable,
		}
		if err := s.store.CreateFieldConfig(ctx, cfg); err != nil {
			return nil, err
		}

		diff, err := changelog.Diff("", "field", "", form.ScriptBody)
		if err != nil {
			return nil, err
		}
		if _, err := s.changelog.Record(ctx, id, actor, diff, model.CreatedComment); err != nil {
			return nil, err
		}
		action = audit.ActionCreated
	} else {
		oldBody := cfg.ScriptBody

		cfg.ScriptBody = form.ScriptBody
		cfg.Cacheable = form.Cacheable
		if err := s.store.UpdateFieldConfig(ctx, cfg); err != nil {
			return nil, err
		}

		diff, err := changelog.Diff("field", "field", oldBody, form.ScriptBody)
		if err != nil {
			return nil, err
		}
		if _, err := s.changelog.Record(ctx, id, actor, diff, form.Comment); err != nil {
			return nil, err
		}
		action = audit.ActionUpdated
	}

	if err := s.audit.Record(ctx, audit.Entry{
		Actor:    actor,
		Category: audit.CategoryFieldConfig,
		Action:   action,
		Subject:  strconv.FormatInt(id, 10),
	}); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		return nil, err
	}
	if err := s.notifier.NotifyFieldChanged(ctx, meta.FieldID); err != nil {
		return nil, err
	}

	return s.buildView(ctx, *meta, cfg, true)
}

// GetScript resolves the script for a config through the cache. This is
// the hot path used by field evaluation; an uncustomized config yields the
// default script, never an error.
func (s *Service) GetScript(ctx context.Context, id int64) (model.FieldScript, error) {
	return s.cache.GetScript(ctx, id)
}

// InvalidateAll clears the script cache cluster-wide.
func (s *Service) InvalidateAll(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// validate runs the validation gate: the parser first, its failure carried
// verbatim, then the form-shape rules. Nothing is mutated on failure.
func (s *Service) validate(ctx context.Context, isNew bool, form *model.ConfigForm) error {
	if err := s.parser.Parse(ctx, form.ScriptBody); err != nil {
		return &model.ScriptInvalidError{Field: "scriptBody", Message: err.Error()}
	}
	return model.ValidateForm(isNew, form)
}

func (s *Service) buildView(ctx context.Context, meta catalog.ConfigContext, cfg *model.FieldConfig, includeChangelogs bool) (*model.ConfigView, error) {
	view := &model.ConfigView{
		ID:          meta.ID,
		FieldID:     meta.FieldID,
		FieldName:   meta.FieldName,
		ContextName: meta.ContextName,
		Cacheable:   true,
	}

	if cfg != nil {
		view.Version = cfg.Version
		view.ScriptBody = cfg.ScriptBody
		view.Cacheable = cfg.Cacheable
	}

	if includeChangelogs {
		if cfg == nil {
			view.Changelogs = []*model.ChangelogEntry{}
		} else {
			logs, err := s.store.GetChangelogs(ctx, meta.ID)
			if err != nil {
				return nil, err
			}
			if logs == nil {
				logs = []*model.ChangelogEntry{}
			}
			view.Changelogs = logs
		}
	}

	return view, nil
}
