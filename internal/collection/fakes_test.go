// SPDX-License-Identifier: MPL-2.0

package collection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/modcurator/modcurator/internal/exchange"
	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/internal/msgbus"
	"github.com/modcurator/modcurator/internal/reader"
	"github.com/modcurator/modcurator/internal/storage"
	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/types"
)

var errCollaborator = errors.New("collaborator failed")

type fakeGames struct {
	game *models.Game
	err  error
}

func (f fakeGames) GetSelected(context.Context) (*models.Game, error) {
	if f.game == nil {
		return nil, f.err
	}
	g := *f.game
	return &g, f.err
}

type fakeExporter struct {
	mu         sync.Mutex
	exported   []exchange.ExportParams
	exportErr  error
	importName string
	importErr  error
	dirErr     error
	dirCalls   []exchange.ImportParams
}

func (f *fakeExporter) Export(_ context.Context, p exchange.ExportParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, p)
	return f.exportErr
}

func (f *fakeExporter) populate(p exchange.ImportParams) error {
	if f.importErr != nil {
		return f.importErr
	}
	p.Collection.Name = f.importName
	return nil
}

func (f *fakeExporter) Import(_ context.Context, p exchange.ImportParams) error {
	return f.populate(p)
}

func (f *fakeExporter) ImportModDirectory(_ context.Context, p exchange.ImportParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirCalls = append(f.dirCalls, p)
	return f.dirErr
}

func (f *fakeExporter) ImportParadoxos(_ context.Context, p exchange.ImportParams) error {
	return f.populate(p)
}

func (f *fakeExporter) ImportParadox(_ context.Context, p exchange.ImportParams) error {
	return f.populate(p)
}

func (f *fakeExporter) ImportParadoxLauncher(_ context.Context, p exchange.ImportParams) error {
	return f.populate(p)
}

type fakeModWriter struct{ exists bool }

func (f fakeModWriter) ModDirectoryExists(context.Context, exchange.ModWriterParams) bool {
	return f.exists
}

type fakeReader struct {
	info *reader.FileInfo
	err  error
}

func (f fakeReader) GetFileInfo(context.Context, string, string) (*reader.FileInfo, error) {
	return f.info, f.err
}

type fakeReports struct {
	mu      sync.Mutex
	reports []hashreport.Report
	path    types.FilesystemPath
	err     error
}

func (f *fakeReports) Export(_ context.Context, reports []hashreport.Report, path types.FilesystemPath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports, f.path = reports, path
	return f.err
}

type recordingBus struct {
	mu      sync.Mutex
	events  []msgbus.Event
	awaited []msgbus.Event
}

func (b *recordingBus) Publish(ev msgbus.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBus) PublishAwait(_ context.Context, ev msgbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	b.awaited = append(b.awaited, ev)
	return nil
}

func (b *recordingBus) awaitedCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ev := range b.awaited {
		if ev.Topic() == topic {
			n++
		}
	}
	return n
}

func (b *recordingBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ev := range b.events {
		if ev.Topic() == topic {
			n++
		}
	}
	return n
}

// slowStore delays every collection read and update, widening the window in
// which concurrent read-modify-write cycles could interleave.
type slowStore struct {
	*storage.MemoryStore
	delay time.Duration
}

func (s slowStore) GetCollections(ctx context.Context) ([]models.Collection, error) {
	time.Sleep(s.delay)
	return s.MemoryStore.GetCollections(ctx)
}

func (s slowStore) UpdateCollections(ctx context.Context, fn storage.CollectionsUpdate) error {
	return s.MemoryStore.UpdateCollections(ctx, func(all []models.Collection) ([]models.Collection, error) {
		time.Sleep(s.delay)
		return fn(all)
	})
}

// mockCase seeds a store with three collections across two games and selects
// the game "test".
func mockCase(t *testing.T) (Dependencies, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	err := store.SetCollections(context.Background(), []models.Collection{
		{Name: "test", Game: "test", Mods: []string{"1", "2"}},
		{Name: "test2", Game: "test", Mods: []string{"2"}},
		{Name: "test", Game: "test2", Mods: []string{"3"}},
	})
	if err != nil {
		t.Fatalf("SetCollections() error = %v", err)
	}
	return Dependencies{
		Games:     fakeGames{game: &models.Game{Type: "test", ModDirectory: "/mods"}},
		Storage:   store,
		Exporter:  &fakeExporter{},
		ModWriter: fakeModWriter{},
		Events:    &recordingBus{},
	}, store
}

// hashCase selects a game with a single selected collection.
func hashCase(t *testing.T, r fakeReader) (Dependencies, *fakeReports) {
	t.Helper()
	store := storage.NewMemoryStore()
	err := store.SetCollections(context.Background(), []models.Collection{
		{Name: "test", Game: "no-items", Mods: []string{"mod/fakemod.mod"}, IsSelected: true},
	})
	if err != nil {
		t.Fatalf("SetCollections() error = %v", err)
	}
	reports := &fakeReports{}
	return Dependencies{
		Games:    fakeGames{game: &models.Game{Type: "no-items", UserDirectory: `C:\fake`}},
		Storage:  store,
		Exporter: &fakeExporter{},
		Reader:   r,
		Reports:  reports,
		Events:   &recordingBus{},
	}, reports
}
