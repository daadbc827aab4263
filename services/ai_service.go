package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"agrisense-http-service/config"
)

// AIServiceInterface is the shared LLM gateway. Gemini keys are tried in
// round-robin order, rotating on rate-limit errors; when the pool is
// exhausted or a key fails fatally the request falls back to OpenAI.
type AIServiceInterface interface {
	GenerateText(ctx context.Context, prompt string) (string, string, error)
	GenerateWithImage(ctx context.Context, prompt, base64Image string) (string, string, error)
	LastProvider() string
}

// AIService implements AIServiceInterface
type AIService struct {
	geminiKeys []string
	model      string
	openaiKey  string
	openaiURL  string
	httpClient *http.Client

	mu           sync.Mutex
	currentIndex int
	lastProvider string
}

// NewAIService builds the gateway from the configured key pool
func NewAIService(cfg *config.Config) *AIService {
	return &AIService{
		geminiKeys: cfg.GeminiAPIKeys,
		model:      cfg.GeminiModel,
		openaiKey:  cfg.OpenAIKey,
		openaiURL:  cfg.OpenAIURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// IsRateLimitError classifies an error as a quota/rate limit failure by
// substring matching on the error text
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted")
}

// GenerateText sends a text prompt through the provider chain
func (s *AIService) GenerateText(ctx context.Context, prompt string) (string, string, error) {
	return s.generate(ctx, func(client *genai.Client) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}, func() (string, error) {
		return s.openaiChat(ctx, []map[string]interface{}{
			{"role": "user", "content": prompt},
		})
	})
}

// GenerateWithImage sends a prompt plus an inline JPEG through the
// provider chain. Data-URL prefixes on the image are stripped.
func (s *AIService) GenerateWithImage(ctx context.Context, prompt, base64Image string) (string, string, error) {
	cleanB64 := base64Image
	if idx := strings.Index(cleanB64, ","); idx >= 0 {
		cleanB64 = cleanB64[idx+1:]
	}
	imageData, err := base64.StdEncoding.DecodeString(cleanB64)
	if err != nil {
		return "", "", fmt.Errorf("invalid base64 image: %w", err)
	}

	return s.generate(ctx, func(client *genai.Client) (string, error) {
		contents := []*genai.Content{
			genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromBytes(imageData, "image/jpeg"),
			}, genai.RoleUser),
		}
		resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}, func() (string, error) {
		return s.openaiChat(ctx, []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]string{
						"url": "data:image/jpeg;base64," + cleanB64,
					}},
				},
			},
		})
	})
}

// generate runs the rotation loop. Rate-limit errors advance to the next
// Gemini key; fatal errors abort the rotation and go straight to the
// fallback so auth and validation failures are not retried as if they
// were quota errors.
func (s *AIService) generate(ctx context.Context, viaGemini func(*genai.Client) (string, error), viaOpenAI func() (string, error)) (string, string, error) {
	s.mu.Lock()
	start := s.currentIndex
	keys := s.geminiKeys
	s.mu.Unlock()

	var lastErr error
	for i := 0; i < len(keys); i++ {
		keyIndex := (start + i) % len(keys)

		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: keys[keyIndex]})
		if err != nil {
			lastErr = err
			config.Error("Gemini client init failed for key #%d: %v", keyIndex+1, err)
			continue
		}

		text, err := viaGemini(client)
		if err == nil {
			s.mu.Lock()
			s.currentIndex = (keyIndex + 1) % len(keys)
			s.lastProvider = fmt.Sprintf("gemini-key-%d", keyIndex+1)
			s.mu.Unlock()
			return text, "gemini", nil
		}

		lastErr = err
		if IsRateLimitError(err) {
			config.Warning("Gemini key #%d rate limited, rotating: %v", keyIndex+1, err)
			continue
		}
		config.Error("Gemini key #%d failed fatally, aborting rotation: %v", keyIndex+1, err)
		break
	}

	if s.openaiKey == "" {
		if lastErr == nil {
			lastErr = errors.New("no Gemini keys configured")
		}
		return "", "", fmt.Errorf("all Gemini keys failed and no OpenAI key configured: %w", lastErr)
	}

	config.Warning("Gemini unavailable, falling back to OpenAI")
	text, err := viaOpenAI()
	if err != nil {
		return "", "", fmt.Errorf("all AI providers failed, last error: %w", err)
	}

	s.mu.Lock()
	s.lastProvider = "openai"
	s.mu.Unlock()
	return text, "openai", nil
}

func (s *AIService) openaiChat(ctx context.Context, messages []map[string]interface{}) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"model":       "gpt-4o-mini",
		"messages":    messages,
		"temperature": 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.openaiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.openaiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai api error: status %d", resp.StatusCode)
	}

	var data struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if len(data.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return data.Choices[0].Message.Content, nil
}

// LastProvider reports which provider served the most recent request
func (s *AIService) LastProvider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProvider
}

// CleanModelJSON strips markdown code fences some models wrap around
// JSON payloads
func CleanModelJSON(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
