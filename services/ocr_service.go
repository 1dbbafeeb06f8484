package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// OCRResponse is the envelope the OCR API wraps results in.
type OCRResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OCRClient calls the external ID-card OCR HTTP API. A failure here is a
// system fault and must surface as an error to the caller, never as a deny.
type OCRClient struct {
	Endpoint string
	APIKey   string
	HTTP     *http.Client
}

func NewOCRClient() *OCRClient {
	endpoint := os.Getenv("OCR_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://api.aigen.online/aiscript/idcard-ocr/v1"
	}
	return &OCRClient{
		Endpoint: endpoint,
		APIKey:   os.Getenv("OCR_API_KEY"),
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// RecognizeText runs OCR on a base64-encoded image and returns the raw
// recognized text. The caller feeds it through NormalizeNationalID.
func (c *OCRClient) RecognizeText(imageBase64 string) (string, error) {
	if idx := strings.Index(imageBase64, "base64,"); idx >= 0 {
		imageBase64 = imageBase64[idx+7:]
	}
	if _, err := base64.StdEncoding.DecodeString(imageBase64); err != nil {
		log.Println("[OCR] base64 decode error:", err)
		return "", fmt.Errorf("base64 invalid: %w", err)
	}

	payload := map[string]interface{}{
		"image": imageBase64,
		"model": "ocr-v1",
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", c.Endpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-aigen-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var ar OCRResponse
	if err := json.Unmarshal(bodyBytes, &ar); err != nil {
		return "", fmt.Errorf("JSON parse error: %w", err)
	}
	if ar.Status != "success" {
		return "", fmt.Errorf("API status error: %s - %s", ar.Status, ar.Message)
	}

	return flattenOCRText(ar.Data)
}

// flattenOCRText joins whatever text fields the OCR API returned into one
// blob for pattern extraction. The API returns either an object or an array
// of objects keyed by field name.
func flattenOCRText(data json.RawMessage) (string, error) {
	var collect func(v interface{}, sb *strings.Builder)
	collect = func(v interface{}, sb *strings.Builder) {
		switch t := v.(type) {
		case string:
			sb.WriteString(t)
			sb.WriteString("\n")
		case map[string]interface{}:
			for _, inner := range t {
				collect(inner, sb)
			}
		case []interface{}:
			for _, inner := range t {
				collect(inner, sb)
			}
		}
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("JSON parse error: %w", err)
	}
	var sb strings.Builder
	collect(v, &sb)
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text returned from OCR: %s", string(data))
	}
	return text, nil
}
