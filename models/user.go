package models

// User represents an account that can log in and own crops and records
type User struct {
	BaseModel
	Username string `gorm:"type:varchar(50);unique;not null" json:"username"`
	Password string `gorm:"type:varchar(100);not null" json:"-"` // bcrypt hash
	Email    string `gorm:"type:varchar(100)" json:"email"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	Role     string `gorm:"type:varchar(20);default:'farmer'" json:"role"` // farmer/admin

	// Relations
	Crops   []Crop           `gorm:"foreignKey:UserID" json:"crops,omitempty"`
	Records []AgronomyRecord `gorm:"foreignKey:UserID" json:"records,omitempty"`
}
