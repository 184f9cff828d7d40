package download

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/blob"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/config"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/order"
)

type fakeStore struct {
	mu      sync.Mutex
	assets  map[string]string // id -> remote name
	data    []byte
	fail    map[string]error
	nameErr map[string]error
	fetches map[string]int
	resolve map[string]int
}

func newFakeStore(t *testing.T, assets map[string]string) *fakeStore {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return &fakeStore{
		assets:  assets,
		data:    buf.Bytes(),
		fail:    make(map[string]error),
		nameErr: make(map[string]error),
		fetches: make(map[string]int),
		resolve: make(map[string]int),
	}
}

func (s *fakeStore) ResolveName(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolve[id]++
	if err := s.nameErr[id]; err != nil {
		return "", err
	}
	name, ok := s.assets[id]
	if !ok {
		return "", blob.ErrNotFound
	}
	return name, nil
}

func (s *fakeStore) Fetch(ctx context.Context, id, destPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[id]++
	if err := s.fail[id]; err != nil {
		return err
	}
	if _, ok := s.assets[id]; !ok {
		return blob.ErrNotFound
	}
	return os.WriteFile(destPath, s.data, 0644)
}

func (s *fakeStore) fetchCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[id]
}

const deckOrder = `<order>
  <details><quantity>3</quantity></details>
  <fronts>
    <card><id>aaa</id><slots>0,1</slots><name>A.png</name></card>
    <card><id>bbb</id><slots>2</slots></card>
  </fronts>
  <backs>
    <card><id>aaa</id><slots>0</slots></card>
  </backs>
  <cardback>ccc</cardback>
</order>`

type eventLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (l *eventLog) add(e ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) count(level ProgressLevel) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

func testSettings(t *testing.T) *config.Settings {
	s := config.DefaultSettings()
	root := t.TempDir()
	s.OutputPath = filepath.Join(root, "out")
	s.ImagesPath = filepath.Join(root, "images")
	s.DownloadRetryCooldown = 0
	s.DownloadMaxRetries = 3
	s.MaxConcurrentOrders = 2
	s.MaxConcurrentImages = 4
	return s
}

func writeOrder(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestManager_EndToEnd(t *testing.T) {
	settings := testSettings(t)
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})
	log := &eventLog{}

	orders := t.TempDir()
	writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, log.add, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{orders}))
	assert.Equal(t, []string{"deck (3 cards)"}, m.GetOrderNames())

	_, filesTotal, _, pagesTotal := m.GetProgress()
	assert.Equal(t, int32(3), filesTotal)
	assert.Equal(t, int32(1), pagesTotal)

	require.NoError(t, m.StartDownloads(context.Background()))

	// aaa is on both faces and still fetched once
	assert.Equal(t, 1, store.fetchCount("aaa"))
	assert.Equal(t, 1, store.fetchCount("bbb"))
	assert.Equal(t, 1, store.fetchCount("ccc"))

	files, filesTotal, pages, pagesTotal := m.GetProgress()
	assert.Equal(t, filesTotal, files)
	assert.Equal(t, pagesTotal, pages)

	assert.FileExists(t, filepath.Join(settings.ImagesPath, "Aaaa.png"))
	assert.FileExists(t, filepath.Join(settings.ImagesPath, "Backccc.png"))
	assert.NoFileExists(t, filepath.Join(settings.ImagesPath, "Aaaa.png.part"))

	reports := m.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, 6, reports[0].Placed)
	assert.Zero(t, reports[0].Skipped)
	require.Equal(t, []string{filepath.Join(settings.OutputPath, "deck_page_1.pdf")}, reports[0].Artifacts)

	data, err := os.ReadFile(reports[0].Artifacts[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	for _, img := range m.Orders()[0].Images() {
		assert.True(t, img.Downloaded(), img.SourceID)
	}
	assert.Equal(t, 1, log.count(LevelSuccess))
}

func TestManager_MissingAsset(t *testing.T) {
	settings := testSettings(t)
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "ccc": "Back.png"})
	log := &eventLog{}

	orders := t.TempDir()
	path := writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, log.add, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{path}))
	require.NoError(t, m.StartDownloads(context.Background()))

	// not found is not retried, and the fetch has the final word
	assert.Equal(t, 1, store.resolve["bbb"])
	assert.Equal(t, 1, store.fetchCount("bbb"))

	reports := m.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, 5, reports[0].Placed)
	assert.Equal(t, 1, reports[0].Skipped)
	assert.Len(t, reports[0].Artifacts, 1)
	assert.Equal(t, 1, log.count(LevelError))
	assert.Equal(t, 1, log.count(LevelWarning))
}

func TestManager_NameLookupFailureStillFetches(t *testing.T) {
	settings := testSettings(t)
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})
	store.nameErr["aaa"] = errors.New("HTTP 405 for HEAD")
	store.nameErr["bbb"] = blob.ErrNotFound

	orders := t.TempDir()
	path := writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, nil, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{path}))
	require.NoError(t, m.StartDownloads(context.Background()))

	assert.Equal(t, 1, store.fetchCount("aaa"))
	assert.Equal(t, 1, store.fetchCount("bbb"))
	assert.FileExists(t, filepath.Join(settings.ImagesPath, "aaa.png"))
	assert.FileExists(t, filepath.Join(settings.ImagesPath, "bbb.png"))

	reports := m.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, 6, reports[0].Placed)
	assert.Zero(t, reports[0].Skipped)
}

func TestManager_RetriesTransportErrors(t *testing.T) {
	settings := testSettings(t)
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})
	store.fail["bbb"] = errors.New("connection reset")

	orders := t.TempDir()
	path := writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, nil, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{path}))
	require.NoError(t, m.StartDownloads(context.Background()))

	assert.Equal(t, settings.DownloadMaxRetries, store.fetchCount("bbb"))
	assert.NoFileExists(t, filepath.Join(settings.ImagesPath, "Bbbb.png.part"))
	assert.Equal(t, 1, m.Reports()[0].Skipped)
}

func TestManager_SkipsCachedImages(t *testing.T) {
	settings := testSettings(t)
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})

	require.NoError(t, os.MkdirAll(settings.ImagesPath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(settings.ImagesPath, "Aaaa.png"), store.data, 0644))

	orders := t.TempDir()
	path := writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, nil, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{path}))
	require.NoError(t, m.StartDownloads(context.Background()))

	assert.Zero(t, store.fetchCount("aaa"))
	assert.Equal(t, 1, store.fetchCount("bbb"))
	assert.Equal(t, 6, m.Reports()[0].Placed)
}

func TestManager_InvalidOrdersDoNotStopBatch(t *testing.T) {
	settings := testSettings(t)
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})
	log := &eventLog{}

	orders := t.TempDir()
	writeOrder(t, orders, "broken.xml", "<order><details>")
	writeOrder(t, orders, "deck.xml", deckOrder)
	writeOrder(t, orders, "gaps.xml", `<order>
  <details><quantity>2</quantity></details>
  <fronts><card><id>aaa</id><slots>0</slots></card></fronts>
  <cardback>ccc</cardback>
</order>`)

	m := NewManager(settings, log.add, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{orders}))

	assert.Equal(t, []string{"deck (3 cards)"}, m.GetOrderNames())
	assert.Equal(t, 2, log.count(LevelError))

	require.NoError(t, m.StartDownloads(context.Background()))
	assert.Len(t, m.Reports(), 1)
}

func TestManager_NoOrders(t *testing.T) {
	m := NewManager(testSettings(t), nil, WithStore(newFakeStore(t, nil)))
	err := m.Initialize(context.Background(), []string{t.TempDir()})
	assert.ErrorIs(t, err, order.ErrNoOrderFound)
}

func TestManager_DryRun(t *testing.T) {
	settings := testSettings(t)
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})
	log := &eventLog{}

	orders := t.TempDir()
	path := writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, log.add, WithStore(store), WithDryRun(true))
	require.NoError(t, m.Initialize(context.Background(), []string{path}))
	require.NoError(t, m.StartDownloads(context.Background()))

	assert.Zero(t, store.fetchCount("aaa"))
	assert.Empty(t, m.Reports())
	assert.NoDirExists(t, settings.OutputPath)
}

func TestManager_DeleteImages(t *testing.T) {
	settings := testSettings(t)
	settings.DeleteImages = true
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})

	orders := t.TempDir()
	path := writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, nil, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{path}))
	require.NoError(t, m.StartDownloads(context.Background()))

	assert.FileExists(t, filepath.Join(settings.OutputPath, "deck_page_1.pdf"))
	entries, err := os.ReadDir(settings.ImagesPath)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManager_DeleteImagesKeepsEarlierCache(t *testing.T) {
	settings := testSettings(t)
	settings.DeleteImages = true
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})

	cached := filepath.Join(settings.ImagesPath, "Aaaa.png")
	require.NoError(t, os.MkdirAll(settings.ImagesPath, 0755))
	require.NoError(t, os.WriteFile(cached, store.data, 0644))

	orders := t.TempDir()
	path := writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, nil, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{path}))
	require.NoError(t, m.StartDownloads(context.Background()))

	assert.FileExists(t, cached)
	assert.NoFileExists(t, filepath.Join(settings.ImagesPath, "Bbbb.png"))
	assert.NoFileExists(t, filepath.Join(settings.ImagesPath, "Backccc.png"))
}

func TestManager_Cancelled(t *testing.T) {
	settings := testSettings(t)
	store := newFakeStore(t, map[string]string{"aaa": "A.png", "bbb": "B.png", "ccc": "Back.png"})

	orders := t.TempDir()
	path := writeOrder(t, orders, "deck.xml", deckOrder)

	m := NewManager(settings, nil, WithStore(store))
	require.NoError(t, m.Initialize(context.Background(), []string{path}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.StartDownloads(ctx), context.Canceled)
	assert.Empty(t, m.Reports())
}

func TestManager_BadSettings(t *testing.T) {
	settings := testSettings(t)
	settings.OutputFormat = "tiff"

	m := NewManager(settings, nil, WithStore(newFakeStore(t, nil)))
	assert.Error(t, m.Initialize(context.Background(), []string{t.TempDir()}))
}
