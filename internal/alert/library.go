package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vcscsvcscs/medimind-backend/internal/azure"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultStoreTimeout bounds a single tone download or upload
const DefaultStoreTimeout = 5 * time.Second

// ErrUnknownTone is returned for tone names outside the palette
var ErrUnknownTone = errors.New("unknown tone")

// ToneStore persists rendered tones
type ToneStore interface {
	UploadTone(ctx context.Context, filename string, data []byte) (string, error)
	DownloadTone(ctx context.Context, blobName string) ([]byte, error)
}

// Library renders tones to WAV once and caches them in memory and, when configured, in blob storage
type Library struct {
	store        ToneStore
	sampleRate   int
	storeTimeout time.Duration
	logger       *zap.Logger

	// one render per tone at a time; other tones are not held up
	loads singleflight.Group

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewLibrary creates a new tone library. store may be nil.
func NewLibrary(store ToneStore, sampleRate int, logger *zap.Logger) *Library {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Library{
		store:        store,
		sampleRate:   sampleRate,
		storeTimeout: DefaultStoreTimeout,
		logger:       logger,
		cache:        make(map[string][]byte),
	}
}

// WithStoreTimeout replaces the deadline applied to each blob store call
func (l *Library) WithStoreTimeout(timeout time.Duration) *Library {
	if timeout > 0 {
		l.storeTimeout = timeout
	}
	return l
}

// Filename returns the file name a tone is stored under
func Filename(toneName string) string {
	return fmt.Sprintf("%s.wav", toneName)
}

// WAVByName returns the WAV rendition of a named palette tone
func (l *Library) WAVByName(ctx context.Context, name string) ([]byte, error) {
	tone, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTone, name)
	}
	return l.WAV(ctx, tone)
}

// WAV returns the WAV rendition of tone, rendering and storing it on first use.
// Store calls are bounded by the store timeout and the caller stops waiting when ctx is done.
func (l *Library) WAV(ctx context.Context, tone Tone) ([]byte, error) {
	if data, ok := l.cached(tone.Name); ok {
		return data, nil
	}

	// The shared load must outlive any single waiter
	loadCtx := context.WithoutCancel(ctx)
	result := l.loads.DoChan(tone.Name, func() (interface{}, error) {
		return l.load(loadCtx, tone)
	})

	select {
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to load tone %s: %w", tone.Name, ctx.Err())
	}
}

func (l *Library) cached(name string) ([]byte, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	data, ok := l.cache[name]
	return data, ok
}

func (l *Library) remember(name string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[name] = data
}

func (l *Library) load(ctx context.Context, tone Tone) ([]byte, error) {
	if data, ok := l.cached(tone.Name); ok {
		return data, nil
	}

	filename := Filename(tone.Name)

	if l.store != nil {
		data, err := l.download(ctx, filename)
		if err == nil {
			l.remember(tone.Name, data)
			return data, nil
		}
		if !errors.Is(err, azure.ErrBlobNotFound) {
			l.logger.Warn("failed to read cached tone, rendering",
				zap.String("tone", tone.Name),
				zap.Error(err),
			)
		}
	}

	data, err := RenderWAV(tone, l.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to render tone %s: %w", tone.Name, err)
	}
	l.remember(tone.Name, data)

	if l.store != nil {
		if err := l.upload(ctx, filename, data); err != nil {
			l.logger.Warn("failed to store rendered tone",
				zap.String("tone", tone.Name),
				zap.Error(err),
			)
		}
	}

	return data, nil
}

func (l *Library) download(ctx context.Context, filename string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()
	return l.store.DownloadTone(ctx, azure.ToneBlobName(filename))
}

func (l *Library) upload(ctx context.Context, filename string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()
	_, err := l.store.UploadTone(ctx, filename, data)
	return err
}
