package services

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"agrisense-http-service/config"
	"agrisense-http-service/models"
	"agrisense-http-service/utils"
)

// RawRecommendation is an ungoverned intervention candidate. Confidence
// is on the 0-100 scale.
type RawRecommendation struct {
	Action       string  `json:"action"`
	Category     string  `json:"category"`
	Priority     string  `json:"priority"`
	Confidence   float64 `json:"confidence"`
	AreaHectares float64 `json:"areaHectares,omitempty"`
}

// GovernedRecommendation wraps a recommendation with the safety verdict
type GovernedRecommendation struct {
	Approved            bool               `json:"approved"`
	Recommendation      *RawRecommendation `json:"recommendation"`
	RequiresHumanReview bool               `json:"requiresHumanReview"`
	Advisory            bool               `json:"advisory,omitempty"`
	ConfidenceDisplay   string             `json:"confidenceDisplay"`
	Disclaimer          string             `json:"disclaimer,omitempty"`
	LegalNotice         string             `json:"legalNotice,omitempty"`
	LiabilityTier       string             `json:"liabilityTier"`
	Reason              string             `json:"reason,omitempty"`
}

// GovernanceAuditEntry is one line of the in-memory audit trail
type GovernanceAuditEntry struct {
	Timestamp           string  `json:"timestamp"`
	Action              string  `json:"action"`
	Category            string  `json:"category"`
	Confidence          float64 `json:"confidence"`
	Approved            bool    `json:"approved"`
	RequiresHumanReview bool    `json:"requiresHumanReview"`
}

// GovernanceServiceInterface is the final-mile safety layer for
// agricultural interventions
type GovernanceServiceInterface interface {
	GovernRecommendation(rec RawRecommendation) *GovernedRecommendation
	GovernAdvice(advice map[string]interface{}, history []models.AgronomyRecord) map[string]interface{}
	AuditTrail() []GovernanceAuditEntry
}

// Approval thresholds. Confidence below the advisory floor is rejected;
// confidence below a priority threshold is approved but downgraded.
const (
	advisoryFloor      = 40.0
	urgentThreshold    = 85.0
	highThreshold      = 75.0
	moderateThreshold  = 60.0
	humanReviewUrgent  = 90.0
	largeAreaHectares  = 10.0
	historyGuardDays   = 10
	auditTrailCapacity = 1000
)

var trustedBrands = []string{"IFFCO", "Govt", "Bayer", "Syngenta", "Yara", "UPL"}

var categoryDisclaimers = map[string]string{
	"pesticide":       "Pesticide use must follow the label. Wear protective equipment and observe pre-harvest intervals.",
	"disease_control": "Disease control products can harm beneficial organisms. Confirm the diagnosis before application.",
	"disease":         "Disease control products can harm beneficial organisms. Confirm the diagnosis before application.",
	"irrigation":      "Irrigation changes affect the whole water balance. Adjust gradually and monitor drainage.",
	"fertilizer":      "Over-fertilization damages soil and water. Base doses on a recent soil test where possible.",
}

var categoryLegalNotices = map[string]string{
	"pesticide":       "Only apply products registered for this crop in your jurisdiction. Misuse is a legal offense.",
	"disease_control": "Restricted-use products may require a licensed applicator.",
	"disease":         "Restricted-use products may require a licensed applicator.",
}

const defaultDisclaimer = "Automated guidance. Verify against local conditions before acting."
const defaultLegalNotice = "This recommendation does not replace professional agronomic consultation."

// GovernanceService implements GovernanceServiceInterface with a bounded
// in-memory audit log. The log is per-process and lost on restart.
type GovernanceService struct {
	audit *utils.BoundedLog
}

// NewGovernanceService builds the governance layer
func NewGovernanceService() *GovernanceService {
	return &GovernanceService{audit: utils.NewBoundedLog(auditTrailCapacity)}
}

// GovernRecommendation applies the approval gate, review flags,
// disclaimers and liability tiering to one recommendation
func (s *GovernanceService) GovernRecommendation(rec RawRecommendation) *GovernedRecommendation {
	category := strings.ToLower(strings.TrimSpace(rec.Category))
	priority := strings.ToLower(strings.TrimSpace(rec.Priority))

	governed := &GovernedRecommendation{
		ConfidenceDisplay: fmt.Sprintf("%.0f%%", rec.Confidence),
		LiabilityTier:     liabilityTier(rec.Confidence, category),
	}

	governed.RequiresHumanReview = requiresHumanReview(category, priority, rec)

	if rec.Confidence < advisoryFloor {
		governed.Approved = false
		governed.Recommendation = nil
		governed.Reason = fmt.Sprintf("Confidence %.0f%% is below the advisory floor of %.0f%%", rec.Confidence, advisoryFloor)
		s.recordAudit(rec, governed)
		return governed
	}

	governed.Approved = true
	approved := rec
	if rec.Confidence < priorityThreshold(priority) {
		governed.Advisory = true
		approved.Priority = "advisory"
		governed.Reason = fmt.Sprintf("Confidence %.0f%% is below the %s threshold, downgraded to advisory", rec.Confidence, priority)
	}
	governed.Recommendation = &approved

	governed.Disclaimer = categoryDisclaimers[category]
	if governed.Disclaimer == "" {
		governed.Disclaimer = defaultDisclaimer
	}
	governed.LegalNotice = categoryLegalNotices[category]
	if governed.LegalNotice == "" {
		governed.LegalNotice = defaultLegalNotice
	}

	s.recordAudit(rec, governed)
	return governed
}

func priorityThreshold(priority string) float64 {
	switch priority {
	case "urgent":
		return urgentThreshold
	case "high":
		return highThreshold
	case "moderate":
		return moderateThreshold
	}
	return 0
}

func requiresHumanReview(category, priority string, rec RawRecommendation) bool {
	switch category {
	case "pesticide", "disease", "disease_control":
		return true
	case "irrigation":
		if rec.AreaHectares > largeAreaHectares {
			return true
		}
	}
	return priority == "urgent" && rec.Confidence < humanReviewUrgent
}

func liabilityTier(confidence float64, category string) string {
	switch category {
	case "pesticide", "disease", "disease_control":
		return "high"
	}
	switch {
	case confidence < 60:
		return "high"
	case confidence < 80:
		return "medium"
	}
	return "standard"
}

func (s *GovernanceService) recordAudit(rec RawRecommendation, governed *GovernedRecommendation) {
	s.audit.Append(GovernanceAuditEntry{
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		Action:              rec.Action,
		Category:            rec.Category,
		Confidence:          rec.Confidence,
		Approved:            governed.Approved,
		RequiresHumanReview: governed.RequiresHumanReview,
	})
}

// AuditTrail snapshots the governed-recommendation log, oldest first
func (s *GovernanceService) AuditTrail() []GovernanceAuditEntry {
	snapshot := s.audit.Snapshot()
	entries := make([]GovernanceAuditEntry, 0, len(snapshot))
	for _, item := range snapshot {
		if entry, ok := item.(GovernanceAuditEntry); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// GovernAdvice post-processes a full AI advice payload: dangerous
// combinations are filtered, recently applied inputs are suppressed and
// product suggestions get trust labels.
func (s *GovernanceService) GovernAdvice(advice map[string]interface{}, history []models.AgronomyRecord) map[string]interface{} {
	if advice == nil {
		return nil
	}

	insights, ok := advice["actionableInsights"].([]interface{})
	if ok {
		diagnosis := strings.ToLower(rootCauseText(advice))
		filtered := make([]interface{}, 0, len(insights))
		for _, raw := range insights {
			insight, ok := raw.(map[string]interface{})
			if !ok {
				filtered = append(filtered, raw)
				continue
			}
			action := strings.ToLower(stringField(insight, "action"))

			// No nitrogen application while fungal risk is flagged
			if strings.Contains(diagnosis, "fungal") && strings.Contains(action, "nitrogen") {
				config.Warning("Governance blocked nitrogen action due to fungal risk conflict")
				continue
			}
			if blockedByHistory(action, history) {
				continue
			}
			filtered = append(filtered, raw)
		}
		advice["actionableInsights"] = filtered
	}

	if tools, ok := advice["inputsAndTools"].([]interface{}); ok {
		for _, raw := range tools {
			product, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			name := stringField(product, "productName")
			trusted := false
			for _, brand := range trustedBrands {
				if strings.Contains(strings.ToLower(name), strings.ToLower(brand)) {
					trusted = true
					break
				}
			}
			if trusted {
				product["trustScore"] = fmt.Sprintf("%.1f", 8.5+rand.Float64())
				product["sourceLabel"] = "Verified Agri-Partner"
			} else {
				product["trustScore"] = fmt.Sprintf("%.1f", 6.0+rand.Float64()*2)
				product["sourceLabel"] = "Market Option"
			}
		}
	}

	return advice
}

func blockedByHistory(action string, history []models.AgronomyRecord) bool {
	for _, record := range history {
		recordAction := strings.ToLower(record.Action)
		inputUsed := strings.ToLower(record.InputUsed)
		match := (recordAction != "" && strings.Contains(action, recordAction)) ||
			(strings.Contains(action, "urea") && strings.Contains(inputUsed, "urea"))
		if !match {
			continue
		}
		daysSince := time.Since(record.CreatedAt).Hours() / 24
		if daysSince < historyGuardDays {
			config.Warning("Governance blocked repeat action %q applied %.0f days ago", record.Action, daysSince)
			return true
		}
	}
	return false
}

func rootCauseText(advice map[string]interface{}) string {
	diagnosis, ok := advice["healthDiagnosis"].(map[string]interface{})
	if !ok {
		return ""
	}
	return stringField(diagnosis, "rootCauseAnalysis")
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
