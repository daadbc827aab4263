package services

import (
	"context"
	"encoding/json"

	"agrisense-http-service/config"
)

// VisionSignals is the structured output of a plant photo analysis.
// Confidence is normalized to 0-1.
type VisionSignals struct {
	DetectedIssues     []string `json:"detectedIssues"`
	Symptoms           []string `json:"symptoms"`
	HealthScore        int      `json:"healthScore"`
	Confidence         float64  `json:"confidence"`
	ImageQuality       string   `json:"imageQuality"`
	VisualObservations string   `json:"visualObservations"`
}

// VisionServiceInterface analyzes crop photos for visible health signals
type VisionServiceInterface interface {
	AnalyzePlantPhoto(ctx context.Context, base64Image string) (*VisionSignals, error)
}

// VisionService implements VisionServiceInterface over the AI gateway
type VisionService struct {
	ai AIServiceInterface
}

// NewVisionService builds the vision analyzer
func NewVisionService(ai AIServiceInterface) *VisionService {
	return &VisionService{ai: ai}
}

const visionPrompt = `
Analyze this crop image and identify health signals.
Return a JSON object with:
{
  "detectedIssues": ["list of visible issues"],
  "symptoms": ["e.g., yellowing", "leaf spots"],
  "healthScore": 0-100,
  "confidence": 0-100,
  "imageQuality": "good/fair/poor",
  "visualObservations": "Short description"
}
Only return JSON.
`

// AnalyzePlantPhoto runs the vision model on a base64 JPEG. Analysis
// failure returns a zero-confidence fallback, not an error, since visual
// input is an optional signal.
func (s *VisionService) AnalyzePlantPhoto(ctx context.Context, base64Image string) (*VisionSignals, error) {
	if base64Image == "" {
		return nil, nil
	}

	text, _, err := s.ai.GenerateWithImage(ctx, visionPrompt, base64Image)
	if err != nil {
		config.Error("Vision analysis failed: %v", err)
		return failedVisionSignals(), nil
	}

	var signals VisionSignals
	if err := json.Unmarshal([]byte(CleanModelJSON(text)), &signals); err != nil {
		config.Error("Vision response parse failed: %v", err)
		return failedVisionSignals(), nil
	}

	// Models report confidence on either the 0-1 or 0-100 scale
	if signals.Confidence > 1 {
		signals.Confidence = signals.Confidence / 100
	}
	if signals.DetectedIssues == nil {
		signals.DetectedIssues = []string{}
	}
	if signals.Symptoms == nil {
		signals.Symptoms = []string{}
	}
	if signals.ImageQuality == "" {
		signals.ImageQuality = "unknown"
	}

	return &signals, nil
}

func failedVisionSignals() *VisionSignals {
	return &VisionSignals{
		DetectedIssues:     []string{},
		Symptoms:           []string{},
		HealthScore:        50,
		Confidence:         0,
		ImageQuality:       "unknown",
		VisualObservations: "Failed to analyze image",
	}
}
