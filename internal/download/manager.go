package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/blob"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/config"
	ioutils "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/io"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/layout"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/logger"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/model"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/order"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/render"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a print progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager coordinates fetching card images and rendering orders.
type Manager struct {
	settings  *config.Settings
	parser    *order.Parser
	store     blob.Store
	assembler *render.Assembler
	logger    *zap.Logger
	dryRun    bool

	fetches singleflight.Group

	orders  []*model.CardSet
	reports []*render.Report
	fetched map[string]struct{}

	totalFiles      int32
	downloadedFiles int32
	totalPages      int32
	renderedPages   int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the blob store instead of building one from settings.
func WithStore(s blob.Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithAssembler sets the assembler instead of building one from settings.
func WithAssembler(a *render.Assembler) Option {
	return func(m *Manager) {
		m.assembler = a
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithDryRun makes StartDownloads report what it would do without
// fetching or rendering anything.
func WithDryRun(dryRun bool) Option {
	return func(m *Manager) {
		m.dryRun = dryRun
	}
}

// NewManager creates a new Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:   settings,
		fetched:    make(map[string]struct{}),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logger.OrNop(m.logger).Named("download")
	m.parser = order.NewParser(m.logger)
	return m
}

// Initialize parses and validates every order found in paths. Paths may be
// order files or directories holding them.
//
// An order that fails to parse or validate is reported and left out; the
// rest of the batch goes on. Initialize only fails when no order file is
// found or the store or output target cannot be set up.
func (m *Manager) Initialize(ctx context.Context, paths []string) error {
	if err := m.setup(ctx); err != nil {
		return err
	}

	files, err := order.ExpandInputs(paths)
	if err != nil {
		return err
	}

	capacity := m.assembler.Grid().Capacity()
	for _, file := range files {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Reading order: %s", file), Level: LevelVerbose})

		set, err := m.parser.ParseFile(file)
		if err != nil {
			m.logger.Warn("order dropped", zap.String("file", file), zap.Error(err))
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error parsing %s: %v", file, err), Level: LevelError})
			continue
		}
		if err := set.Validate(); err != nil {
			m.logger.Warn("order rejected", zap.String("order", set.Name), zap.Error(err))
			m.progress(ProgressEvent{Message: fmt.Sprintf("Invalid order %s: %v", set.Name, err), Level: LevelError})
			continue
		}

		pages := len(layout.PageGroups(set.Quantity, capacity))
		m.orders = append(m.orders, set)
		m.totalFiles += int32(len(set.SourceIDs()))
		m.totalPages += int32(pages)

		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Found order: %s (%d cards, %d images, %d pages)", set.Name, set.Quantity, len(set.SourceIDs()), pages),
			Level:   LevelInfo,
		})
	}

	return nil
}

func (m *Manager) setup(ctx context.Context) error {
	if m.store == nil {
		store, err := blob.New(ctx, m.settings.ToBlobConfig(), m.logger)
		if err != nil {
			return fmt.Errorf("blob store: %w", err)
		}
		m.store = store
	}

	if m.assembler == nil {
		asm, err := NewAssembler(m.settings, m.logger)
		if err != nil {
			return err
		}
		m.assembler = asm
	}
	return nil
}

// NewAssembler builds the page grid and output target described by
// settings.
func NewAssembler(settings *config.Settings, log *zap.Logger) (*render.Assembler, error) {
	lc, err := settings.ToLayoutConfig()
	if err != nil {
		return nil, err
	}
	grid, err := layout.NewGrid(lc)
	if err != nil {
		return nil, err
	}
	target, err := render.NewTarget(settings.OutputFormat, settings.RasterDPI)
	if err != nil {
		return nil, err
	}
	return render.NewAssembler(grid, target, render.WithLogger(log)), nil
}

// StartDownloads fetches the images of every initialized order and renders
// each order once its images are in place.
func (m *Manager) StartDownloads(ctx context.Context) error {
	if m.dryRun {
		m.reportDryRun()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.settings.MaxConcurrentOrders, 1))

	for _, set := range m.orders {
		g.Go(func() error {
			return m.processOrder(gctx, set)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if m.settings.DeleteImages {
		m.deleteImages()
	}
	return ctx.Err()
}

// GetProgress returns current progress.
func (m *Manager) GetProgress() (filesReceived, filesTotal, pagesRendered, pagesTotal int32) {
	return atomic.LoadInt32(&m.downloadedFiles), m.totalFiles,
		atomic.LoadInt32(&m.renderedPages), m.totalPages
}

// GetOrderNames returns the names of all initialized orders.
func (m *Manager) GetOrderNames() []string {
	names := make([]string, len(m.orders))
	for i, set := range m.orders {
		names[i] = fmt.Sprintf("%s (%d cards)", set.Name, set.Quantity)
	}
	return names
}

// Orders returns the initialized orders.
func (m *Manager) Orders() []*model.CardSet {
	return m.orders
}

// Reports returns the render reports of finished orders.
func (m *Manager) Reports() []*render.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*render.Report(nil), m.reports...)
}

func (m *Manager) reportDryRun() {
	for _, set := range m.orders {
		pages := len(layout.PageGroups(set.Quantity, m.assembler.Grid().Capacity()))
		for i := 0; i < pages; i++ {
			path := m.assembler.ArtifactPath(m.settings.OutputPath, set.Name, i)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Would write: %s", path), Level: LevelInfo})
		}
	}
}

func (m *Manager) processOrder(ctx context.Context, set *model.CardSet) error {
	// Images sharing a source id are bound by one goroutine, so the same
	// asset on both faces is fetched once.
	byID := make(map[string][]*model.CardImage)
	for _, img := range set.Images() {
		if img.SourceID == "" {
			continue
		}
		byID[img.SourceID] = append(byID[img.SourceID], img)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.settings.MaxConcurrentImages, 1))

	var failed int32
	for _, id := range set.SourceIDs() {
		images := byID[id]
		if len(images) == 0 {
			continue
		}
		g.Go(func() error {
			if err := m.materialise(gctx, id, images); err != nil {
				atomic.AddInt32(&failed, 1)
				m.logger.Warn("image not materialised", zap.String("order", set.Name), zap.String("id", id), zap.Error(err))
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", id, err), Level: LevelError})
			}
			return nil // Continue with other images
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	report, err := m.assembler.RenderOrder(ctx, set, m.settings.OutputPath)
	if report != nil {
		atomic.AddInt32(&m.renderedPages, int32(report.Pages))
		m.mu.Lock()
		m.reports = append(m.reports, report)
		m.mu.Unlock()
	}
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error rendering %s: %v", set.Name, err), Level: LevelError})
		return nil
	}

	switch {
	case failed == 0 && report.Skipped == 0:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully printed order: %s (%d pages)", set.Name, report.Pages), Level: LevelSuccess})
	default:
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Finished %s, %d of %d placements left empty", set.Name, report.Skipped, report.Placed+report.Skipped),
			Level:   LevelWarning,
		})
	}
	return nil
}

// materialise resolves, binds and fetches one asset and marks every image
// using it as downloaded.
func (m *Manager) materialise(ctx context.Context, id string, images []*model.CardImage) error {
	var remoteName string
	err := m.retry(ctx, id, func() error {
		var err error
		remoteName, err = m.store.ResolveName(ctx, id)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		// A missing name is not a missing asset; the fetch decides that.
		m.logger.Debug("name lookup failed", zap.String("id", id), zap.Error(err))
		m.progress(ProgressEvent{Message: fmt.Sprintf("No name for %s, using the source id", id), Level: LevelVerbose})
		remoteName = ""
	}

	lead := images[0]
	lead.ResolveName(remoteName)
	path := lead.GenerateFilePath(m.settings.ImagesPath)

	if err := m.fetch(ctx, id, path); err != nil {
		return err
	}

	for _, img := range images {
		img.Name = lead.Name
		img.Path = path
		img.MarkDownloaded()
	}
	atomic.AddInt32(&m.downloadedFiles, 1)
	return nil
}

// fetch writes the asset to path unless it is already there. Concurrent
// fetches of the same path share one download. Only paths written by this
// run are recorded for deletion.
func (m *Manager) fetch(ctx context.Context, id, path string) error {
	_, err, _ := m.fetches.Do(path, func() (any, error) {
		if ioutils.FileExists(path) {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(path)), Level: LevelVerbose})
			return nil, nil
		}
		if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}

		part := path + ".part"
		err := m.retry(ctx, id, func() error {
			return m.store.Fetch(ctx, id, part)
		})
		if err != nil {
			_ = os.Remove(part)
			return nil, err
		}
		if err := os.Rename(part, path); err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.fetched[path] = struct{}{}
		m.mu.Unlock()

		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(path)), Level: LevelVerbose})
		return nil, nil
	})
	return err
}

// retry runs fn up to DownloadMaxRetries times. Missing assets and
// cancellation are not retried.
func (m *Manager) retry(ctx context.Context, id string, fn func() error) error {
	attempts := max(m.settings.DownloadMaxRetries, 1)

	var err error
	for tries := 0; tries < attempts; tries++ {
		err = fn()
		if err == nil || errors.Is(err, blob.ErrNotFound) || ctx.Err() != nil {
			return err
		}
		if tries+1 < attempts {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, attempts, id), Level: LevelWarning})
			m.waitForRetry(ctx, tries)
		}
	}
	return err
}

func (m *Manager) deleteImages() {
	m.mu.RLock()
	paths := make([]string, 0, len(m.fetched))
	for p := range m.fetched {
		paths = append(paths, p)
	}
	m.mu.RUnlock()

	removed, err := ioutils.RemoveFiles(paths)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error deleting images: %v", err), Level: LevelWarning})
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Deleted %d images", removed), Level: LevelVerbose})
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
