package clients

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/tesseract-hub/cloud-translate-service/internal/config"
	"github.com/tesseract-hub/cloud-translate-service/internal/models"
)

// TranslationProvider is the capability the dispatcher needs from the upstream provider
type TranslationProvider interface {
	// FetchLanguages returns the languages usable both as source and target
	FetchLanguages(ctx context.Context) ([]models.Language, error)

	// Translate returns the entity-decoded translation of req.Text
	Translate(ctx context.Context, req models.TranslationRequest) (string, error)
}

// ErrProviderUnavailable is returned by every call when the provider could
// not be set up at start-up.
var ErrProviderUnavailable = errors.New("translation provider unavailable")

// ErrorKind classifies provider failures for the transport layer
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnavailable
	KindTimeout
	KindConnect
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	case KindConnect:
		return "connect"
	default:
		return "internal"
	}
}

// ProviderError wraps a failed provider call
type ProviderError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ClassifyError wraps err into a ProviderError for the given operation
func ClassifyError(op string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Kind: kindOf(err), Op: op, Err: err}
}

// KindOf reports the ErrorKind of any error returned by a provider
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return kindOf(err)
}

func kindOf(err error) ErrorKind {
	if errors.Is(err, ErrProviderUnavailable) {
		return KindUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnect
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnect
	}

	return KindInternal
}

// UnavailableProvider fails every call with ErrProviderUnavailable
type UnavailableProvider struct {
	Reason error
}

func (p UnavailableProvider) FetchLanguages(context.Context) ([]models.Language, error) {
	return nil, p.err("fetch languages")
}

func (p UnavailableProvider) Translate(context.Context, models.TranslationRequest) (string, error) {
	return "", p.err("translate")
}

func (p UnavailableProvider) err(op string) error {
	err := ErrProviderUnavailable
	if p.Reason != nil {
		err = fmt.Errorf("%w: %v", ErrProviderUnavailable, p.Reason)
	}
	return &ProviderError{Kind: KindUnavailable, Op: op, Err: err}
}

// NewProvider sets up the Google client once. If credentials cannot be
// obtained, it logs the failure and returns an UnavailableProvider so that
// the rest of the service keeps running.
func NewProvider(ctx context.Context, cfg config.ProviderConfig, logger *logrus.Entry) (TranslationProvider, bool) {
	client, err := NewGoogleTranslateClient(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Translation provider unavailable, /translate and /languages will fail")
		return UnavailableProvider{Reason: err}, false
	}
	return client, true
}
