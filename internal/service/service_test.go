package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/groblegark/fieldscript/internal/audit"
	"github.com/groblegark/fieldscript/internal/catalog"
	"github.com/groblegark/fieldscript/internal/changelog"
	"github.com/groblegark/fieldscript/internal/events"
	"github.com/groblegark/fieldscript/internal/model"
	"github.com/groblegark/fieldscript/internal/parser"
	"github.com/groblegark/fieldscript/internal/scriptcache"
)

// memStore is an in-memory store.Store for tests. Failure modes can be
// injected per operation.
type memStore struct {
	mu      sync.Mutex
	configs map[int64]model.FieldConfig
	logs    []model.ChangelogEntry
	nextLog int64
	nextVer int

	findErr   error
	createErr error
	updateErr error
	appendErr error
}

func newMemStore() *memStore {
	return &memStore{configs: make(map[int64]model.FieldConfig)}
}

func (s *memStore) FindFieldConfig(_ context.Context, id int64) (*model.FieldConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	cfg, ok := s.configs[id]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (s *memStore) CreateFieldConfig(_ context.Context, cfg *model.FieldConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.configs[cfg.ID]; exists {
		return &model.ConflictError{ID: cfg.ID}
	}
	s.nextVer++
	cfg.Version = fmt.Sprintf("ver-%d", s.nextVer)
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	s.configs[cfg.ID] = *cfg
	return nil
}

func (s *memStore) UpdateFieldConfig(_ context.Context, cfg *model.FieldConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.nextVer++
	cfg.Version = fmt.Sprintf("ver-%d", s.nextVer)
	cfg.UpdatedAt = time.Now().UTC()
	s.configs[cfg.ID] = *cfg
	return nil
}

func (s *memStore) ListFieldConfigs(_ context.Context) ([]*model.FieldConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.FieldConfig
	for _, cfg := range s.configs {
		c := cfg
		out = append(out, &c)
	}
	return out, nil
}

func (s *memStore) AppendChangelog(_ context.Context, entry *model.ChangelogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.nextLog++
	entry.ID = s.nextLog
	entry.CreatedAt = time.Now().UTC()
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *memStore) GetChangelogs(_ context.Context, configID int64) ([]*model.ChangelogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.ChangelogEntry
	for _, e := range s.logs {
		if e.ConfigID == configID {
			entry := e
			out = append(out, &entry)
		}
	}
	return out, nil
}

func (s *memStore) ListChangelogs(_ context.Context) ([]*model.ChangelogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.ChangelogEntry
	for _, e := range s.logs {
		entry := e
		out = append(out, &entry)
	}
	return out, nil
}

func (s *memStore) Close() error { return nil }

// captureNotifier records field-changed signals.
type captureNotifier struct {
	mu     sync.Mutex
	fields []int64
}

func (n *captureNotifier) NotifyFieldChanged(_ context.Context, fieldID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fields = append(n.fields, fieldID)
	return nil
}

type fixture struct {
	svc      *Service
	store    *memStore
	auditRec *audit.Memory
	notifier *captureNotifier
}

func newFixture(t *testing.T, p parser.Parser) *fixture {
	t.Helper()
	st := newMemStore()
	cache, err := scriptcache.New(st, &events.NoopPublisher{}, 0)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}
	t.Cleanup(cache.Stop)

	cat := catalog.NewStatic(
		catalog.ConfigContext{ID: 42, FieldID: 10100, FieldName: "Release notes", ContextName: "Default scheme"},
		catalog.ConfigContext{ID: 43, FieldID: 10100, FieldName: "Release notes", ContextName: "Mobile projects"},
	)

	auditRec := &audit.Memory{}
	notifier := &captureNotifier{}
	svc := New(st, cat, p, cache, changelog.NewRecorder(st), auditRec, notifier)
	return &fixture{svc: svc, store: st, auditRec: auditRec, notifier: notifier}
}

func TestUpdateCreatesRecord(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})
	ctx := context.Background()

	view, err := f.svc.Update(ctx, "admin", 42, &model.ConfigForm{
		ScriptBody: "return 1",
		Cacheable:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ScriptBody != "return 1" || !view.Cacheable {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Version == "" {
		t.Error("create must assign a version")
	}
	if view.FieldID != 10100 || view.FieldName != "Release notes" {
		t.Errorf("view missing catalog metadata: %+v", view)
	}

	if len(view.Changelogs) != 1 {
		t.Fatalf("got %d changelog entries, want 1", len(view.Changelogs))
	}
	entry := view.Changelogs[0]
	if entry.Comment != model.CreatedComment {
		t.Errorf("comment = %q, want %q", entry.Comment, model.CreatedComment)
	}
	if entry.Author != "admin" {
		t.Errorf("author = %q, want admin", entry.Author)
	}
	if !strings.Contains(entry.Diff, "+return 1") {
		t.Errorf("creation diff missing insertion:\n%s", entry.Diff)
	}

	entries := f.auditRec.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(entries))
	}
	if entries[0].Action != audit.ActionCreated || entries[0].Subject != "42" || entries[0].Actor != "admin" {
		t.Errorf("unexpected audit entry: %+v", entries[0])
	}

	if len(f.notifier.fields) != 1 || f.notifier.fields[0] != 10100 {
		t.Errorf("notified fields = %v, want [10100]", f.notifier.fields)
	}
}

func TestUpdateExistingRecord(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})
	ctx := context.Background()

	created, err := f.svc.Update(ctx, "admin", 42, &model.ConfigForm{ScriptBody: "return 1", Cacheable: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := f.svc.Update(ctx, "carol", 42, &model.ConfigForm{
		ScriptBody: "return 2",
		Cacheable:  false,
		Comment:    "switch to two",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.ScriptBody != "return 2" || view.Cacheable {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Version == created.Version {
		t.Errorf("update must assign a fresh version, still %q", view.Version)
	}

	if len(view.Changelogs) != 2 {
		t.Fatalf("got %d changelog entries, want 2", len(view.Changelogs))
	}
	second := view.Changelogs[1]
	if second.Comment != "switch to two" || second.Author != "carol" {
		t.Errorf("unexpected second entry: %+v", second)
	}
	if !strings.Contains(second.Diff, "-return 1") || !strings.Contains(second.Diff, "+return 2") {
		t.Errorf("diff missing change:\n%s", second.Diff)
	}

	entries := f.auditRec.Entries()
	if len(entries) != 2 || entries[1].Action != audit.ActionUpdated {
		t.Errorf("unexpected audit entries: %+v", entries)
	}
}

func TestUpdateUnknownConfig(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})

	_, err := f.svc.Update(context.Background(), "admin", 999, &model.ConfigForm{ScriptBody: "return 1"})
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %T, want *model.NotFoundError", err)
	}
	if len(f.store.logs) != 0 || len(f.auditRec.Entries()) != 0 {
		t.Error("nothing may be written for an unknown config")
	}
}

func TestUpdateParserRejection(t *testing.T) {
	f := newFixture(t, parser.Func(func(context.Context, string) error {
		return errors.New("unexpected token at line 1")
	}))

	_, err := f.svc.Update(context.Background(), "admin", 42, &model.ConfigForm{ScriptBody: "retrun 1"})
	var invalid *model.ScriptInvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %T, want *model.ScriptInvalidError", err)
	}
	if !strings.Contains(invalid.Message, "unexpected token at line 1") {
		t.Errorf("parser message not carried verbatim: %q", invalid.Message)
	}
	if len(f.store.configs) != 0 || len(f.store.logs) != 0 || len(f.auditRec.Entries()) != 0 {
		t.Error("nothing may be written when validation fails")
	}
}

func TestUpdateValidationFailures(t *testing.T) {
	for _, tc := range []struct {
		name    string
		seed    bool
		form    model.ConfigForm
		wantErr any
	}{
		{
			name:    "EmptyBody",
			form:    model.ConfigForm{ScriptBody: "   "},
			wantErr: &model.RequiredFieldError{},
		},
		{
			name:    "EmptyBodyOnUpdate",
			seed:    true,
			form:    model.ConfigForm{ScriptBody: "", Comment: "emptied"},
			wantErr: &model.RequiredFieldError{},
		},
		{
			name:    "MissingCommentOnUpdate",
			seed:    true,
			form:    model.ConfigForm{ScriptBody: "return 2"},
			wantErr: &model.RequiredFieldError{},
		},
		{
			name:    "CommentTooLong",
			seed:    true,
			form:    model.ConfigForm{ScriptBody: "return 2", Comment: strings.Repeat("x", model.CommentMaxLength+1)},
			wantErr: &model.FieldTooLongError{},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, parser.AcceptAll{})
			ctx := context.Background()

			if tc.seed {
				if _, err := f.svc.Update(ctx, "admin", 42, &model.ConfigForm{ScriptBody: "return 1"}); err != nil {
					t.Fatalf("seeding: %v", err)
				}
			}
			logsBefore := len(f.store.logs)
			auditBefore := len(f.auditRec.Entries())

			_, err := f.svc.Update(ctx, "admin", 42, &tc.form)
			if err == nil {
				t.Fatal("expected validation error")
			}
			switch tc.wantErr.(type) {
			case *model.RequiredFieldError:
				var e *model.RequiredFieldError
				if !errors.As(err, &e) {
					t.Fatalf("got %T, want *model.RequiredFieldError", err)
				}
			case *model.FieldTooLongError:
				var e *model.FieldTooLongError
				if !errors.As(err, &e) {
					t.Fatalf("got %T, want *model.FieldTooLongError", err)
				}
			}

			if tc.seed {
				cfg := f.store.configs[42]
				if cfg.ScriptBody != "return 1" {
					t.Errorf("record mutated on failed validation: %+v", cfg)
				}
			}
			if len(f.store.logs) != logsBefore || len(f.auditRec.Entries()) != auditBefore {
				t.Error("history or audit written on failed validation")
			}
		})
	}
}

func TestGetUncustomized(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})

	view, err := f.svc.Get(context.Background(), 42, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ScriptBody != "" || view.Version != "" {
		t.Errorf("expected empty view, got %+v", view)
	}
	if !view.Cacheable {
		t.Error("uncustomized config defaults to cacheable")
	}
	if view.Changelogs == nil || len(view.Changelogs) != 0 {
		t.Errorf("expected empty changelog slice, got %v", view.Changelogs)
	}
}

func TestGetUnknownConfig(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})

	_, err := f.svc.Get(context.Background(), 999, false)
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %T, want *model.NotFoundError", err)
	}
}

func TestListAll(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})
	ctx := context.Background()

	if _, err := f.svc.Update(ctx, "admin", 42, &model.ConfigForm{ScriptBody: "return 1", Cacheable: true}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	views, err := f.svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2 (one per catalog context)", len(views))
	}
	if views[0].ID != 42 || views[0].ScriptBody != "return 1" {
		t.Errorf("unexpected first view: %+v", views[0])
	}
	if views[1].ID != 43 || views[1].ScriptBody != "" {
		t.Errorf("unexpected second view: %+v", views[1])
	}
	if len(views[0].Changelogs) != 1 {
		t.Errorf("first view should carry history, got %d entries", len(views[0].Changelogs))
	}
}

func TestGetScriptReadYourWrite(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})
	ctx := context.Background()

	// Warm the cache with the default script.
	script, err := f.svc.GetScript(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if script.ScriptBody != "" {
		t.Fatalf("expected default script, got %+v", script)
	}

	if _, err := f.svc.Update(ctx, "admin", 42, &model.ConfigForm{ScriptBody: "return 1", Cacheable: true}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// The write invalidated the cache, so this process sees it immediately.
	script, err = f.svc.GetScript(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if script.ScriptBody != "return 1" {
		t.Errorf("stale script after write: %+v", script)
	}
}

func TestUpdateStorageFailureSurfaces(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})
	ctx := context.Background()

	f.store.createErr = &model.StorageError{Op: "create field config", Err: errors.New("disk full")}
	_, err := f.svc.Update(ctx, "admin", 42, &model.ConfigForm{ScriptBody: "return 1"})
	var storageErr *model.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("got %T, want *model.StorageError", err)
	}
	if len(f.store.logs) != 0 || len(f.auditRec.Entries()) != 0 {
		t.Error("no history or audit after a failed record write")
	}
}

func TestUpdateHistoryFailureAfterWrite(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})
	ctx := context.Background()

	f.store.appendErr = &model.StorageError{Op: "append changelog", Err: errors.New("disk full")}
	_, err := f.svc.Update(ctx, "admin", 42, &model.ConfigForm{ScriptBody: "return 1"})
	if err == nil {
		t.Fatal("expected error")
	}

	// The record write is not rolled back.
	if _, ok := f.store.configs[42]; !ok {
		t.Error("record write must survive a later history failure")
	}
	if len(f.auditRec.Entries()) != 0 {
		t.Error("audit must not run after a history failure")
	}
}

func TestInvalidateAll(t *testing.T) {
	f := newFixture(t, parser.AcceptAll{})
	ctx := context.Background()

	if _, err := f.svc.Update(ctx, "admin", 42, &model.ConfigForm{ScriptBody: "return 1", Cacheable: true}); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	if _, err := f.svc.GetScript(ctx, 42); err != nil {
		t.Fatalf("warming: %v", err)
	}

	if err := f.svc.InvalidateAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutate the store behind the cache's back; a recompute must see it.
	f.store.mu.Lock()
	cfg := f.store.configs[42]
	cfg.ScriptBody = "return 2"
	f.store.configs[42] = cfg
	f.store.mu.Unlock()

	script, err := f.svc.GetScript(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if script.ScriptBody != "return 2" {
		t.Errorf("cache not cleared, got %+v", script)
	}
}
