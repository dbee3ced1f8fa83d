// Package ocr talks to an OCR.space-compatible text recognition API.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client recognizes text in images through a hosted OCR API.
type Client struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client
}

// NewClient creates a new OCR client
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey: apiKey,
		APIURL: "https://api.ocr.space/parse/image",
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type parseResult struct {
	ParsedText string `json:"ParsedText"`
}

type parseResponse struct {
	ParsedResults         []parseResult `json:"ParsedResults"`
	IsErroredOnProcessing bool          `json:"IsErroredOnProcessing"`
	ErrorMessage          any           `json:"ErrorMessage"`
}

// RecognizeText runs OCR on the image at imageURL and returns the combined
// recognized text. languageHint is a three-letter OCR language code.
func (c *Client) RecognizeText(ctx context.Context, imageURL string, languageHint string) (string, error) {
	form := url.Values{}
	form.Set("apikey", c.APIKey)
	form.Set("url", imageURL)
	form.Set("language", languageHint)
	form.Set("scale", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("api error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	var parsed parseResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr processing failed: %v", parsed.ErrorMessage)
	}

	var texts []string
	for _, result := range parsed.ParsedResults {
		if result.ParsedText != "" {
			texts = append(texts, result.ParsedText)
		}
	}
	return strings.Join(texts, "\n"), nil
}
