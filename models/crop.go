package models

import (
	"time"
)

// Crop represents a crop planted in a tracked field zone
type Crop struct {
	BaseModel
	UserID         uint       `gorm:"index" json:"user_id"`
	Name           string     `gorm:"type:varchar(50);not null" json:"name"`
	CropType       string     `gorm:"type:varchar(30);not null" json:"crop_type"` // rice/wheat/cotton/tomato
	ZoneID         string     `gorm:"type:varchar(50);index" json:"zone_id"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	AreaHectares   float64    `json:"area_hectares"`
	SowingDate     *time.Time `json:"sowing_date"`
	IrrigationType string     `gorm:"type:varchar(30)" json:"irrigation_type"`

	// Relations
	User    *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Records []AgronomyRecord `gorm:"foreignKey:CropID" json:"records,omitempty"`
}

// DaysAfterSowing returns the age of the crop in days, 0 when unknown
func (c *Crop) DaysAfterSowing() int {
	if c.SowingDate == nil {
		return 0
	}
	return int(time.Since(*c.SowingDate).Hours() / 24)
}

// AgronomyRecord logs a field action taken by the farmer (irrigation,
// fertilizer, spray). The advisory pipeline reads recent records as history.
type AgronomyRecord struct {
	BaseModel
	UserID    uint   `gorm:"index" json:"user_id"`
	CropID    uint   `gorm:"index" json:"crop_id"`
	Action    string `gorm:"type:varchar(100);not null" json:"action"`
	Category  string `gorm:"type:varchar(30)" json:"category"` // irrigation/fertilizer/pesticide/observation
	InputUsed string `gorm:"type:varchar(100)" json:"input_used"`
	Quantity  string `gorm:"type:varchar(50)" json:"quantity"`
	Notes     string `gorm:"type:varchar(500)" json:"notes"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Crop *Crop `gorm:"foreignKey:CropID" json:"crop,omitempty"`
}
