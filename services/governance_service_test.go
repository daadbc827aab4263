package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense-http-service/models"
)

func TestGovernRecommendationBelowFloorRejected(t *testing.T) {
	svc := NewGovernanceService()
	governed := svc.GovernRecommendation(RawRecommendation{
		Action:     "Spray broad-spectrum insecticide",
		Category:   "pesticide",
		Priority:   "high",
		Confidence: 35,
	})

	assert.False(t, governed.Approved)
	assert.Nil(t, governed.Recommendation)
	assert.NotEmpty(t, governed.Reason)
	// Safety flags survive rejection
	assert.True(t, governed.RequiresHumanReview)
	assert.Equal(t, "high", governed.LiabilityTier)
}

func TestGovernRecommendationPesticideAlwaysReviewed(t *testing.T) {
	svc := NewGovernanceService()
	governed := svc.GovernRecommendation(RawRecommendation{
		Action:     "Apply tricyclazole against blast",
		Category:   "pesticide",
		Priority:   "high",
		Confidence: 95,
	})

	assert.True(t, governed.Approved)
	assert.True(t, governed.RequiresHumanReview, "pesticide actions always need review regardless of confidence")
	assert.Equal(t, "high", governed.LiabilityTier)
	assert.Contains(t, governed.Disclaimer, "Pesticide")
	assert.Contains(t, governed.LegalNotice, "registered")
}

func TestGovernRecommendationLargeAreaIrrigation(t *testing.T) {
	svc := NewGovernanceService()

	small := svc.GovernRecommendation(RawRecommendation{
		Action: "Increase irrigation by 20%", Category: "irrigation", Priority: "moderate",
		Confidence: 88, AreaHectares: 4,
	})
	assert.False(t, small.RequiresHumanReview)

	large := svc.GovernRecommendation(RawRecommendation{
		Action: "Increase irrigation by 20%", Category: "irrigation", Priority: "moderate",
		Confidence: 88, AreaHectares: 15,
	})
	assert.True(t, large.RequiresHumanReview)
}

func TestGovernRecommendationAdvisoryDowngrade(t *testing.T) {
	svc := NewGovernanceService()
	governed := svc.GovernRecommendation(RawRecommendation{
		Action:     "Apply potash before flowering",
		Category:   "fertilizer",
		Priority:   "urgent",
		Confidence: 70,
	})

	assert.True(t, governed.Approved)
	assert.True(t, governed.Advisory)
	require.NotNil(t, governed.Recommendation)
	assert.Equal(t, "advisory", governed.Recommendation.Priority)
	assert.True(t, governed.RequiresHumanReview, "urgent under 90 confidence needs review")
}

func TestGovernRecommendationCleanApproval(t *testing.T) {
	svc := NewGovernanceService()
	governed := svc.GovernRecommendation(RawRecommendation{
		Action:     "Top-dress 30 kg/acre urea",
		Category:   "fertilizer",
		Priority:   "moderate",
		Confidence: 85,
	})

	assert.True(t, governed.Approved)
	assert.False(t, governed.Advisory)
	assert.False(t, governed.RequiresHumanReview)
	assert.Equal(t, "medium", governed.LiabilityTier)
	assert.Equal(t, "85%", governed.ConfidenceDisplay)
	assert.Equal(t, "moderate", governed.Recommendation.Priority)
}

func TestAuditTrailBounded(t *testing.T) {
	svc := NewGovernanceService()
	for i := 0; i < auditTrailCapacity+50; i++ {
		svc.GovernRecommendation(RawRecommendation{
			Action: fmt.Sprintf("action-%d", i), Category: "fertilizer",
			Priority: "moderate", Confidence: 80,
		})
	}

	trail := svc.AuditTrail()
	assert.Len(t, trail, auditTrailCapacity)
	// Oldest entries were evicted
	assert.Equal(t, "action-50", trail[0].Action)
	assert.Equal(t, fmt.Sprintf("action-%d", auditTrailCapacity+49), trail[len(trail)-1].Action)
}

func governableAdvice() map[string]interface{} {
	return map[string]interface{}{
		"healthDiagnosis": map[string]interface{}{
			"rootCauseAnalysis": "Fungal infection spreading under high humidity",
		},
		"actionableInsights": []interface{}{
			map[string]interface{}{"action": "Apply nitrogen booster", "reason": "growth"},
			map[string]interface{}{"action": "Improve field drainage", "reason": "reduce humidity"},
		},
		"inputsAndTools": []interface{}{
			map[string]interface{}{"productName": "IFFCO DAP", "type": "Fertilizer"},
			map[string]interface{}{"productName": "Local mix", "type": "Fertilizer"},
		},
	}
}

func TestGovernAdviceBlocksNitrogenOnFungalRisk(t *testing.T) {
	svc := NewGovernanceService()
	governed := svc.GovernAdvice(governableAdvice(), nil)

	insights := governed["actionableInsights"].([]interface{})
	require.Len(t, insights, 1)
	remaining := insights[0].(map[string]interface{})
	assert.Equal(t, "Improve field drainage", remaining["action"])
}

func TestGovernAdviceHistoryGuard(t *testing.T) {
	svc := NewGovernanceService()

	advice := map[string]interface{}{
		"actionableInsights": []interface{}{
			map[string]interface{}{"action": "Apply urea topdressing"},
		},
	}
	history := []models.AgronomyRecord{{
		BaseModel: models.BaseModel{CreatedAt: time.Now().AddDate(0, 0, -3)},
		Action:    "Fertilizer application",
		InputUsed: "Urea 46%",
	}}

	governed := svc.GovernAdvice(advice, history)
	assert.Empty(t, governed["actionableInsights"].([]interface{}), "urea applied 3 days ago blocks a repeat")

	// The same record older than the guard window no longer blocks
	advice = map[string]interface{}{
		"actionableInsights": []interface{}{
			map[string]interface{}{"action": "Apply urea topdressing"},
		},
	}
	history[0].CreatedAt = time.Now().AddDate(0, 0, -20)
	governed = svc.GovernAdvice(advice, history)
	assert.Len(t, governed["actionableInsights"].([]interface{}), 1)
}

func TestGovernAdviceTrustLabels(t *testing.T) {
	svc := NewGovernanceService()
	governed := svc.GovernAdvice(governableAdvice(), nil)

	tools := governed["inputsAndTools"].([]interface{})
	trusted := tools[0].(map[string]interface{})
	assert.Equal(t, "Verified Agri-Partner", trusted["sourceLabel"])
	assert.NotEmpty(t, trusted["trustScore"])

	generic := tools[1].(map[string]interface{})
	assert.Equal(t, "Market Option", generic["sourceLabel"])
}

func TestGovernAdviceNilSafe(t *testing.T) {
	svc := NewGovernanceService()
	assert.Nil(t, svc.GovernAdvice(nil, nil))
}
