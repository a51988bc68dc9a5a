package models

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Language is a provider language usable both as source and as target
type Language struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// RawLanguage is one entry of the provider's supported-languages listing.
// Every field may be absent.
type RawLanguage struct {
	LanguageCode  *string `json:"languageCode,omitempty"`
	DisplayName   *string `json:"displayName,omitempty"`
	SupportSource *bool   `json:"supportSource,omitempty"`
	SupportTarget *bool   `json:"supportTarget,omitempty"`
}

// NormalizeLanguages keeps the entries that carry a code, a display name and
// explicit support in both directions. Other entries are dropped silently.
func NormalizeLanguages(raw []RawLanguage) []Language {
	languages := make([]Language, 0, len(raw))
	for _, r := range raw {
		if r.LanguageCode == nil || *r.LanguageCode == "" {
			continue
		}
		if r.DisplayName == nil || *r.DisplayName == "" {
			continue
		}
		if r.SupportSource == nil || !*r.SupportSource {
			continue
		}
		if r.SupportTarget == nil || !*r.SupportTarget {
			continue
		}
		languages = append(languages, Language{
			Code:        *r.LanguageCode,
			DisplayName: *r.DisplayName,
		})
	}
	return languages
}

// TranslationRequest is the semantic content of one translate call
type TranslationRequest struct {
	SourceLanguageCode string
	TargetLanguageCode string
	Text               string
}

// TranslateBody is the JSON body of POST /translate. Fields are pointers so
// that a missing field fails binding while an empty string is accepted.
type TranslateBody struct {
	SourceLanguageCode *string `json:"source_language_code" binding:"required"`
	TargetLanguageCode *string `json:"target_language_code" binding:"required"`
	Text               *string `json:"text" binding:"required"`
}

// Request converts a bound body into a TranslationRequest
func (b TranslateBody) Request() TranslationRequest {
	return TranslationRequest{
		SourceLanguageCode: deref(b.SourceLanguageCode),
		TargetLanguageCode: deref(b.TargetLanguageCode),
		Text:               deref(b.Text),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Fingerprint identifies a TranslationRequest in the shared cache.
// Collisions are possible with 64-bit probability and are accepted.
type Fingerprint uint64

// Key returns the cache key for the fingerprint
func (f Fingerprint) Key() string {
	return fmt.Sprintf("translate:%016x", uint64(f))
}

// NewFingerprint hashes source, target and text in that order. Each field
// is length-prefixed so ("ab","c") and ("a","bc") never share input bytes.
// The hash is unseeded and therefore stable across processes.
func NewFingerprint(req TranslationRequest) Fingerprint {
	d := xxhash.New()
	writeField(d, req.SourceLanguageCode)
	writeField(d, req.TargetLanguageCode)
	writeField(d, req.Text)
	return Fingerprint(d.Sum64())
}

func writeField(d *xxhash.Digest, s string) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
	_, _ = d.Write(n[:])
	_, _ = d.WriteString(s)
}

// TranslationStats holds usage counters per language pair
type TranslationStats struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SourceLang      string    `json:"source_lang" gorm:"type:varchar(35);not null;uniqueIndex:idx_translation_stats_pair"`
	TargetLang      string    `json:"target_lang" gorm:"type:varchar(35);not null;uniqueIndex:idx_translation_stats_pair"`
	TotalRequests   int64     `json:"total_requests" gorm:"default:0"`
	CacheHits       int64     `json:"cache_hits" gorm:"default:0"`
	CacheMisses     int64     `json:"cache_misses" gorm:"default:0"`
	TotalCharacters int64     `json:"total_characters" gorm:"default:0"`
	LastRequestAt   time.Time `json:"last_request_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the table name for TranslationStats
func (TranslationStats) TableName() string {
	return "translation_stats"
}

// BeforeCreate hook for TranslationStats
func (s *TranslationStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
