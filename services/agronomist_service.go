package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"agrisense-http-service/config"
	"agrisense-http-service/models"
	"agrisense-http-service/utils"
)

// Location is a geographic point
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ExpertAdviceParams are the inputs for one advisory run
type ExpertAdviceParams struct {
	CropType        string                   `json:"cropType"`
	Variety         string                   `json:"variety,omitempty"`
	GrowthStage     string                   `json:"growthStage"`
	Location        Location                 `json:"location"`
	SoilData        map[string]interface{}   `json:"soilData,omitempty"`
	Weather         interface{}              `json:"weather,omitempty"`
	PestsRisk       interface{}              `json:"pestsRisk,omitempty"`
	HealthScore     int                      `json:"healthScore"`
	History         []models.AgronomyRecord  `json:"history,omitempty"`
	PhotoAnalysis   *VisionSignals           `json:"photoAnalysis,omitempty"`
	UserDescription string                   `json:"userDescription,omitempty"`
	Constraints     map[string]interface{}   `json:"constraints,omitempty"`
}

// DiagnosisStore persists memoized AI diagnoses. FindByHash returns
// gorm.ErrRecordNotFound on a cache miss.
type DiagnosisStore interface {
	FindByHash(inputHash string) (*models.AIDiagnosis, error)
	Save(diagnosis *models.AIDiagnosis) error
}

type gormDiagnosisStore struct {
	db *gorm.DB
}

// NewDiagnosisStore builds the GORM-backed diagnosis cache
func NewDiagnosisStore(db *gorm.DB) DiagnosisStore {
	return &gormDiagnosisStore{db: db}
}

func (s *gormDiagnosisStore) FindByHash(inputHash string) (*models.AIDiagnosis, error) {
	var diagnosis models.AIDiagnosis
	if err := s.db.Where("input_hash = ?", inputHash).First(&diagnosis).Error; err != nil {
		return nil, err
	}
	return &diagnosis, nil
}

func (s *gormDiagnosisStore) Save(diagnosis *models.AIDiagnosis) error {
	return s.db.Create(diagnosis).Error
}

// AgronomistServiceInterface generates expert agronomy advice with a
// hash-keyed persistent cache in front of the AI providers
type AgronomistServiceInterface interface {
	GetExpertAdvice(ctx context.Context, params ExpertAdviceParams) (map[string]interface{}, error)
}

// AgronomistService implements AgronomistServiceInterface
type AgronomistService struct {
	ai    AIServiceInterface
	store DiagnosisStore
}

// NewAgronomistService builds the advisory pipeline
func NewAgronomistService(ai AIServiceInterface, store DiagnosisStore) *AgronomistService {
	return &AgronomistService{ai: ai, store: store}
}

// GetExpertAdvice runs the full advisory state machine: hash, cache
// lookup, prompt, provider chain, persist. Total provider failure yields
// the deterministic local heuristic response instead of an error.
func (s *AgronomistService) GetExpertAdvice(ctx context.Context, params ExpertAdviceParams) (map[string]interface{}, error) {
	var visualIssues []string
	if params.PhotoAnalysis != nil {
		visualIssues = params.PhotoAnalysis.DetectedIssues
	}
	inputHash := utils.DiagnosisInputHash(
		params.CropType,
		params.GrowthStage,
		params.Location.Lat,
		params.Location.Lon,
		params.UserDescription,
		visualIssues,
	)

	if s.store != nil {
		if cached, err := s.store.FindByHash(inputHash); err == nil {
			var result map[string]interface{}
			if err := json.Unmarshal(cached.Result, &result); err == nil {
				result["diagnosticSource"] = "Cached (AgronomistAI)"
				config.Info("Diagnosis cache hit for %s (%s)", params.CropType, inputHash[:12])
				return result, nil
			}
			config.Warning("Cached diagnosis %s is unreadable, regenerating: %v", inputHash[:12], err)
		}
	}

	prompt := buildAdvicePrompt(params)
	text, provider, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		config.Error("All AI providers failed for %s advice: %v", params.CropType, err)
		return heuristicAdvice(params), nil
	}

	var advice map[string]interface{}
	if err := json.Unmarshal([]byte(CleanModelJSON(text)), &advice); err != nil {
		config.Error("AI advice parse failed: %v", err)
		return heuristicAdvice(params), nil
	}
	advice["diagnosticSource"] = fmt.Sprintf("Live (AgronomistAI via %s)", provider)

	if s.store != nil {
		s.persistDiagnosis(inputHash, params, advice, provider)
	}

	return advice, nil
}

// persistDiagnosis writes the memoization row. A concurrent writer may
// have inserted the same hash first; the unique index keeps the earlier
// row and the duplicate error is only logged.
func (s *AgronomistService) persistDiagnosis(inputHash string, params ExpertAdviceParams, advice map[string]interface{}, provider string) {
	contextJSON, err := json.Marshal(params)
	if err != nil {
		config.Warning("Diagnosis context marshal failed: %v", err)
		return
	}
	resultJSON, err := json.Marshal(advice)
	if err != nil {
		config.Warning("Diagnosis result marshal failed: %v", err)
		return
	}

	diagnosis := &models.AIDiagnosis{
		InputHash: inputHash,
		CropType:  params.CropType,
		Context:   contextJSON,
		Result:    resultJSON,
		Provider:  provider,
	}
	if err := s.store.Save(diagnosis); err != nil {
		config.Warning("Diagnosis persist skipped for %s: %v", inputHash[:12], err)
	}
}

func buildAdvicePrompt(params ExpertAdviceParams) string {
	variety := params.Variety
	if variety == "" {
		variety = "standard variety"
	}
	soilJSON, _ := json.Marshal(params.SoilData)
	weatherJSON, _ := json.Marshal(params.Weather)
	pestsJSON, _ := json.Marshal(params.PestsRisk)
	historyJSON, _ := json.Marshal(params.History)
	constraintsJSON, _ := json.Marshal(params.Constraints)
	photoJSON, _ := json.Marshal(params.PhotoAnalysis)

	return fmt.Sprintf(`
You are an Expert Precision Agriculture AI Agronomist designed for real-world farming decisions.
Your output must be accurate, dynamic, actionable, and crop-specific.

INPUT DATA:
- Crop: %s (%s)
- Growth Stage: %s
- Location: Lat %g, Lon %g
- Zone Health Score (0-100): %d
- Soil Data: %s
- Weather (7-14 day forecast): %s
- Pest & Disease Risk: %s
- Visual Analysis: %s
- Farmer Description: %s
- Farmer History (Previous actions): %s
- Constraints: %s

MANDATORY OUTPUT FORMAT (JSON ONLY):
{
  "healthDiagnosis": {
    "currentScore": 0-100,
    "keyStressFactors": ["soil", "weather", "pest", "nutrition"],
    "rootCauseAnalysis": "Deep technical explanation of the primary issue"
  },
  "actionableInsights": [
    {
      "action": "Specific technical action",
      "reason": "Why it helps",
      "dose": "Precise quantity (e.g., kg/acre)",
      "time": "Specific timing (e.g., Early morning)",
      "expectedBenefit": "Percentage yield improvement"
    }
  ],
  "inputsAndTools": [
    {
      "productName": "Name",
      "type": "Fertilizer/Pesticide/Tool",
      "activeIngredient": "Chemical/Bio component",
      "pros": "Advantages",
      "cons": "Disadvantages",
      "riskWarning": "Safety info",
      "compatibility": "Mixability info"
    }
  ],
  "cropCalendar": {
    "applyNow": ["Action 1", "Action 2"],
    "applyNext": ["Action 3"],
    "avoidNow": ["Action to avoid"],
    "adjustmentLogic": "Weather-based reasoning"
  },
  "impactPrediction": {
    "yieldChange": "+/- %%",
    "qualityImprovement": "Size, Color, Shelf life details",
    "riskIfIgnored": "Probability of crop loss"
  },
  "decisionLogic": [
    "Fact-based reasoning step 1",
    "Fact-based reasoning step 2"
  ]
}

RULES:
- No generic advice.
- If confidence < 85%%, add a "lowConfidenceWarning" field.
- Use metric units.
- Everything must be live, recalculated, and adaptive.
- Do not add any markdown fluff, only return the JSON object.
`,
		params.CropType, variety,
		params.GrowthStage,
		params.Location.Lat, params.Location.Lon,
		params.HealthScore,
		soilJSON, weatherJSON, pestsJSON, photoJSON,
		params.UserDescription, historyJSON, constraintsJSON)
}

// heuristicAdvice is the deterministic local response served when every
// AI provider is unavailable, keyed by the zone health score
func heuristicAdvice(params ExpertAdviceParams) map[string]interface{} {
	score := params.HealthScore
	var (
		stressFactors []string
		rootCause     string
		actions       []map[string]interface{}
	)

	switch {
	case score >= 80:
		stressFactors = []string{}
		rootCause = "No dominant stress factor detected. Crop parameters are within expected ranges."
		actions = []map[string]interface{}{{
			"action":          "Continue the current irrigation and nutrition schedule",
			"reason":          "Health indicators are stable",
			"dose":            "As per existing schedule",
			"time":            "Regular intervals",
			"expectedBenefit": "Maintains current trajectory",
		}}
	case score >= 60:
		stressFactors = []string{"weather", "nutrition"}
		rootCause = "Mild stress signals detected. Most likely early nutrient or moisture imbalance."
		actions = []map[string]interface{}{{
			"action":          "Scout the field and verify soil moisture at root depth",
			"reason":          "Early correction prevents yield loss",
			"dose":            "N/A",
			"time":            "Within 24 hours",
			"expectedBenefit": "Prevents 5-10% yield decline",
		}}
	case score >= 40:
		stressFactors = []string{"soil", "weather", "pest"}
		rootCause = "Multiple stress indicators present. Field inspection is required to isolate the primary cause."
		actions = []map[string]interface{}{{
			"action":          "Inspect affected zones and collect leaf/soil samples",
			"reason":          "Score indicates compounding stress",
			"dose":            "N/A",
			"time":            "Immediate",
			"expectedBenefit": "Enables targeted treatment",
		}}
	default:
		stressFactors = []string{"soil", "weather", "pest", "nutrition"}
		rootCause = "Severe stress detected across indicators. Immediate expert consultation advised."
		actions = []map[string]interface{}{{
			"action":          "Contact a local agronomist for on-site assessment",
			"reason":          "Automated confidence is insufficient at this severity",
			"dose":            "N/A",
			"time":            "Immediate",
			"expectedBenefit": "Limits further crop loss",
		}}
	}

	return map[string]interface{}{
		"healthDiagnosis": map[string]interface{}{
			"currentScore":      score,
			"keyStressFactors":  stressFactors,
			"rootCauseAnalysis": rootCause,
		},
		"actionableInsights": actions,
		"inputsAndTools":     []interface{}{},
		"cropCalendar": map[string]interface{}{
			"applyNow":        []string{"Field scouting"},
			"applyNext":       []string{},
			"avoidNow":        []string{"New chemical applications until diagnosis is confirmed"},
			"adjustmentLogic": "Offline heuristic guidance, recalculate when AI providers recover",
		},
		"impactPrediction": map[string]interface{}{
			"yieldChange":        "unknown",
			"qualityImprovement": "unknown",
			"riskIfIgnored":      "unknown",
		},
		"decisionLogic": []string{
			fmt.Sprintf("Zone health score %d mapped to offline advisory tier", score),
			"AI providers unavailable, served deterministic local guidance",
		},
		"diagnosticSource":     "Local Heuristic (AgronomistAI offline)",
		"lowConfidenceWarning": "Generated without live AI analysis. Verify with a local expert.",
		"generatedAt":          time.Now().UTC().Format(time.RFC3339),
	}
}
