package clients

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tesseract-hub/cloud-translate-service/internal/models"
)

// FixtureProvider serves a fixed catalog and translation table. Unknown
// requests translate to the empty string. It is safe for concurrent use.
type FixtureProvider struct {
	Languages    []models.Language
	Translations map[models.TranslationRequest]string

	mu  sync.RWMutex
	err error

	languageCalls  atomic.Int64
	translateCalls atomic.Int64
}

// NewFixtureProvider creates a fixture with the given catalog and translations
func NewFixtureProvider(languages []models.Language, translations map[models.TranslationRequest]string) *FixtureProvider {
	if translations == nil {
		translations = make(map[models.TranslationRequest]string)
	}
	return &FixtureProvider{
		Languages:    languages,
		Translations: translations,
	}
}

// FailWith makes every following call fail with err. A nil err restores
// normal behavior.
func (f *FixtureProvider) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FixtureProvider) failure() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

func (f *FixtureProvider) FetchLanguages(ctx context.Context) ([]models.Language, error) {
	f.languageCalls.Add(1)
	if err := f.failure(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, ClassifyError("fetch languages", err)
	}
	out := make([]models.Language, len(f.Languages))
	copy(out, f.Languages)
	return out, nil
}

func (f *FixtureProvider) Translate(ctx context.Context, req models.TranslationRequest) (string, error) {
	f.translateCalls.Add(1)
	if err := f.failure(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", ClassifyError("translate", err)
	}
	return f.Translations[req], nil
}

// LanguageCalls returns how many times FetchLanguages was called
func (f *FixtureProvider) LanguageCalls() int64 {
	return f.languageCalls.Load()
}

// TranslateCalls returns how many times Translate was called
func (f *FixtureProvider) TranslateCalls() int64 {
	return f.translateCalls.Load()
}
