package models

import (
	"gorm.io/datatypes"
)

// AIDiagnosis memoizes one AI advisory response keyed by a deterministic
// hash of the normalized request. The unique index makes the first writer
// win; there is no update path - repeated identical requests read this row
// instead of calling the provider again.
type AIDiagnosis struct {
	BaseModel
	InputHash string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"input_hash"`
	CropType  string         `gorm:"type:varchar(30);index" json:"crop_type"`
	Context   datatypes.JSON `json:"context"` // full request snapshot at diagnosis time
	Result    datatypes.JSON `json:"result"`  // parsed advice JSON
	Provider  string         `gorm:"type:varchar(30)" json:"provider"` // gemini/openai/local-fallback
}
