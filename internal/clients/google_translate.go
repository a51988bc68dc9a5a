package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tesseract-hub/cloud-translate-service/internal/config"
	"github.com/tesseract-hub/cloud-translate-service/internal/models"
)

const cloudTranslationScope = "https://www.googleapis.com/auth/cloud-translation"

// GoogleTranslateClient talks to the Cloud Translation v3 REST API.
// The authenticated HTTP client is created once and shared by all requests.
type GoogleTranslateClient struct {
	httpClient          *http.Client
	baseURL             string
	displayLanguageCode string
	logger              *logrus.Entry
}

// GoogleTranslateRequest is the body of a translateText call
type GoogleTranslateRequest struct {
	Contents           []string `json:"contents"`
	SourceLanguageCode string   `json:"sourceLanguageCode,omitempty"`
	TargetLanguageCode string   `json:"targetLanguageCode"`
}

// GoogleTranslateResponse is the body of a successful translateText call
type GoogleTranslateResponse struct {
	Translations []struct {
		TranslatedText       string `json:"translatedText"`
		DetectedLanguageCode string `json:"detectedLanguageCode,omitempty"`
	} `json:"translations"`
}

// GoogleLanguagesResponse is the body of a supportedLanguages call
type GoogleLanguagesResponse struct {
	Languages []models.RawLanguage `json:"languages"`
}

type googleErrorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGoogleTranslateClient authenticates with a service account key
func NewGoogleTranslateClient(ctx context.Context, cfg config.ProviderConfig, logger *logrus.Entry) (*GoogleTranslateClient, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS not configured")
	}

	keyJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, keyJSON, cloudTranslationScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("no project id in configuration or service account key")
	}

	// Fetching the first token proves the credentials work before serving.
	if _, err := creds.TokenSource.Token(); err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, creds.TokenSource)
	httpClient.Timeout = cfg.RequestTimeout

	logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"location":   cfg.Location,
	}).Info("Google Cloud Translation client initialized")

	return newGoogleTranslateClient(httpClient, cfg.Endpoint, projectID, cfg.Location, cfg.DisplayLanguageCode, logger), nil
}

func newGoogleTranslateClient(httpClient *http.Client, endpoint, projectID, location, displayLanguageCode string, logger *logrus.Entry) *GoogleTranslateClient {
	return &GoogleTranslateClient{
		httpClient: httpClient,
		baseURL: fmt.Sprintf("%s/v3/projects/%s/locations/%s",
			strings.TrimRight(endpoint, "/"), url.PathEscape(projectID), url.PathEscape(location)),
		displayLanguageCode: displayLanguageCode,
		logger:              logger,
	}
}

// FetchLanguages requests the catalog in the display locale and keeps the
// entries usable in both directions.
func (c *GoogleTranslateClient) FetchLanguages(ctx context.Context) ([]models.Language, error) {
	const op = "fetch languages"

	languagesURL := c.baseURL + "/supportedLanguages?displayLanguageCode=" + url.QueryEscape(c.displayLanguageCode)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, languagesURL, nil)
	if err != nil {
		return nil, ClassifyError(op, fmt.Errorf("failed to create request: %w", err))
	}

	var result GoogleLanguagesResponse
	if err := c.do(httpReq, &result); err != nil {
		return nil, ClassifyError(op, err)
	}

	languages := models.NormalizeLanguages(result.Languages)
	c.logger.WithFields(logrus.Fields{
		"received": len(result.Languages),
		"usable":   len(languages),
	}).Debug("Fetched supported languages")

	return languages, nil
}

// Translate sends the request fields verbatim and returns the first
// translation with HTML entities decoded. No translations yields "".
func (c *GoogleTranslateClient) Translate(ctx context.Context, req models.TranslationRequest) (string, error) {
	const op = "translate"

	body, err := json.Marshal(GoogleTranslateRequest{
		Contents:           []string{req.Text},
		SourceLanguageCode: req.SourceLanguageCode,
		TargetLanguageCode: req.TargetLanguageCode,
	})
	if err != nil {
		return "", ClassifyError(op, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+":translateText", bytes.NewReader(body))
	if err != nil {
		return "", ClassifyError(op, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var result GoogleTranslateResponse
	if err := c.do(httpReq, &result); err != nil {
		return "", ClassifyError(op, err)
	}

	if len(result.Translations) == 0 {
		c.logger.WithFields(logrus.Fields{
			"source_lang": req.SourceLanguageCode,
			"target_lang": req.TargetLanguageCode,
		}).Warn("Provider returned no translations")
		return "", nil
	}

	return html.UnescapeString(result.Translations[0].TranslatedText), nil
}

func (c *GoogleTranslateClient) do(httpReq *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr googleErrorResponse
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != nil {
			return fmt.Errorf("Google API error %d (%s): %s", apiErr.Error.Code, apiErr.Error.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("Google API returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
