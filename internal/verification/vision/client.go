// Package vision implements the verification ports against an
// OpenAI-compatible vision model endpoint. One multimodal model serves all
// three analyses; each port sends its own instruction and parses the model's
// JSON answer.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"idverify/internal/decision"
	"idverify/internal/verification"
)

const defaultTimeout = 60 * time.Second

// Client calls a chat-completions style vision endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

const recognizePrompt = `Extract the following from this identity document image:
name, birth date, address, expiration date, document number, issuing
authority, and the document type (driver license, national ID card,
passport, ...).

Answer with JSON only:
{
  "document_type": "...",
  "name": "...",
  "birth_date": "YYYY-MM-DD",
  "address": "...",
  "expiration_date": "YYYY-MM-DD",
  "document_number": "...",
  "issuing_authority": "...",
  "confidence": 0.95
}`

// Recognize extracts document fields via the vision model.
func (c *Client) Recognize(ctx context.Context, document verification.Image) (verification.OCRResult, error) {
	var parsed struct {
		DocumentType     string  `json:"document_type"`
		Name             string  `json:"name"`
		BirthDate        string  `json:"birth_date"`
		Address          string  `json:"address"`
		ExpirationDate   string  `json:"expiration_date"`
		DocumentNumber   string  `json:"document_number"`
		IssuingAuthority string  `json:"issuing_authority"`
		Confidence       float64 `json:"confidence"`
	}
	if err := c.ask(ctx, recognizePrompt, &parsed, document); err != nil {
		return verification.OCRResult{}, err
	}

	return verification.OCRResult{
		DocumentType: parsed.DocumentType,
		Fields: verification.DocumentFields{
			Name:             parsed.Name,
			BirthDate:        parsed.BirthDate,
			Address:          parsed.Address,
			ExpirationDate:   parsed.ExpirationDate,
			DocumentNumber:   parsed.DocumentNumber,
			IssuingAuthority: parsed.IssuingAuthority,
		},
		Confidence: parsed.Confidence,
	}, nil
}

const comparePrompt = `The first image is an identity document portrait, the
second a live selfie. Judge whether they show the same person.

Answer with JSON only:
{
  "score": 0.0,
  "result": "PASS|FAIL|REVIEW",
  "notes": "...",
  "face_quality": {"brightness": 0.0, "blur": 0.0, "angle": 0.0, "occlusion": 0.0}
}`

// Compare scores the likeness between document portrait and selfie.
func (c *Client) Compare(ctx context.Context, document, selfie verification.Image) (verification.FaceResult, error) {
	var parsed struct {
		Score       float64 `json:"score"`
		Result      string  `json:"result"`
		Notes       string  `json:"notes"`
		FaceQuality *struct {
			Brightness float64 `json:"brightness"`
			Blur       float64 `json:"blur"`
			Angle      float64 `json:"angle"`
			Occlusion  float64 `json:"occlusion"`
		} `json:"face_quality"`
	}
	if err := c.ask(ctx, comparePrompt, &parsed, document, selfie); err != nil {
		return verification.FaceResult{}, err
	}

	result := verification.FaceResult{
		Score:  parsed.Score,
		Bucket: parsed.Result,
		Notes:  parsed.Notes,
	}
	if q := parsed.FaceQuality; q != nil {
		result.Quality = &verification.FaceQuality{
			Brightness: q.Brightness,
			Blur:       q.Blur,
			Angle:      q.Angle,
			Occlusion:  q.Occlusion,
		}
	}
	return result, nil
}

const checkPrompt = `Judge the authenticity of this identity document image.
Check for signs of editing or tampering, security pattern consistency, font
consistency, background distortion, unnatural color shifts, and edge
artifacts.

Answer with JSON only:
{
  "result": "VALID|INVALID|SUSPICIOUS",
  "confidence": 0.95,
  "risk_factors": [],
  "notes": "..."
}`

// Check judges whether the document shows signs of forgery.
func (c *Client) Check(ctx context.Context, document verification.Image) (verification.AuthenticityReport, error) {
	var parsed struct {
		Result      string   `json:"result"`
		Confidence  float64  `json:"confidence"`
		RiskFactors []string `json:"risk_factors"`
		Notes       string   `json:"notes"`
	}
	if err := c.ask(ctx, checkPrompt, &parsed, document); err != nil {
		return verification.AuthenticityReport{}, err
	}

	result := decision.AuthenticityResult(parsed.Result)
	switch result {
	case decision.AuthenticityValid, decision.AuthenticityInvalid, decision.AuthenticitySuspicious:
	default:
		return verification.AuthenticityReport{}, fmt.Errorf("unexpected authenticity verdict %q", parsed.Result)
	}

	return verification.AuthenticityReport{
		Result:      result,
		Confidence:  parsed.Confidence,
		RiskFactors: parsed.RiskFactors,
		Notes:       parsed.Notes,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ask sends one prompt with the given images and decodes the model's JSON
// answer into out.
func (c *Client) ask(ctx context.Context, prompt string, out any, images ...verification.Image) error {
	content := []contentPart{{Type: "text", Text: prompt}}
	for _, img := range images {
		uri := "data:" + img.MediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
		content = append(content, contentPart{Type: "image_url", ImageURL: &imageURL{URL: uri}})
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		MaxTokens:   1024,
		Temperature: 0.2,
		Messages:    []chatMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return fmt.Errorf("encode vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call vision endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vision endpoint returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read vision response: %w", err)
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return fmt.Errorf("parse vision response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return fmt.Errorf("vision response contained no choices")
	}

	answer := extractJSON(chat.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(answer), out); err != nil {
		return fmt.Errorf("parse model answer: %w", err)
	}
	return nil
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// extractJSON strips a Markdown code fence when the model wraps its answer
// in one.
func extractJSON(content string) string {
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return strings.TrimSpace(content)
}
