package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"agrisense-http-service/models"
)

// CropServiceInterface manages tracked crops and their field history
type CropServiceInterface interface {
	GetCrops(userID uint, query models.PaginationQuery) ([]models.Crop, models.PaginationResult, error)
	GetCropByID(id uint) (*models.Crop, error)
	GetCropByZone(zoneID string) (*models.Crop, error)
	CreateCrop(crop *models.Crop) error
	UpdateCrop(id uint, updates map[string]interface{}) (*models.Crop, error)
	DeleteCrop(id uint) error
	GetRecords(cropID uint, limit int) ([]models.AgronomyRecord, error)
	CreateRecord(record *models.AgronomyRecord) error
}

// CropService implements CropServiceInterface
type CropService struct {
	db       *gorm.DB
	ontology OntologyServiceInterface
}

// NewCropService creates a new crop service
func NewCropService(db *gorm.DB, ontology OntologyServiceInterface) *CropService {
	return &CropService{db: db, ontology: ontology}
}

// GetCrops lists a user's crops with pagination
func (s *CropService) GetCrops(userID uint, query models.PaginationQuery) ([]models.Crop, models.PaginationResult, error) {
	if query.PageNum <= 0 {
		query.PageNum = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}

	var total int64
	base := s.db.Model(&models.Crop{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, models.PaginationResult{}, err
	}

	order := "created_at asc"
	if query.Desc {
		order = "created_at desc"
	}

	var crops []models.Crop
	err := base.Order(order).
		Offset((query.PageNum - 1) * query.PageSize).
		Limit(query.PageSize).
		Find(&crops).Error
	if err != nil {
		return nil, models.PaginationResult{}, err
	}

	return crops, models.NewPaginationResult(int(total), query.PageNum, query.PageSize), nil
}

// GetCropByID fetches one crop
func (s *CropService) GetCropByID(id uint) (*models.Crop, error) {
	var crop models.Crop
	if err := s.db.First(&crop, id).Error; err != nil {
		return nil, err
	}
	return &crop, nil
}

// GetCropByZone fetches the crop planted in a zone
func (s *CropService) GetCropByZone(zoneID string) (*models.Crop, error) {
	var crop models.Crop
	if err := s.db.Where("zone_id = ?", zoneID).First(&crop).Error; err != nil {
		return nil, err
	}
	return &crop, nil
}

// CreateCrop stores a new crop after validating the crop type against
// the ontology
func (s *CropService) CreateCrop(crop *models.Crop) error {
	if _, err := s.ontology.GetCropInfo(crop.CropType); err != nil {
		return fmt.Errorf("unsupported crop type %q: %w", crop.CropType, err)
	}
	return s.db.Create(crop).Error
}

// UpdateCrop applies partial updates to a crop
func (s *CropService) UpdateCrop(id uint, updates map[string]interface{}) (*models.Crop, error) {
	crop, err := s.GetCropByID(id)
	if err != nil {
		return nil, err
	}
	if cropType, ok := updates["crop_type"].(string); ok {
		if _, err := s.ontology.GetCropInfo(cropType); err != nil {
			return nil, fmt.Errorf("unsupported crop type %q: %w", cropType, err)
		}
	}
	if err := s.db.Model(crop).Updates(updates).Error; err != nil {
		return nil, err
	}
	return crop, nil
}

// DeleteCrop removes a crop and its records
func (s *CropService) DeleteCrop(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("crop_id = ?", id).Delete(&models.AgronomyRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Crop{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetRecords returns the most recent field actions for a crop
func (s *CropService) GetRecords(cropID uint, limit int) ([]models.AgronomyRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var records []models.AgronomyRecord
	err := s.db.Where("crop_id = ?", cropID).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// CreateRecord logs a field action
func (s *CropService) CreateRecord(record *models.AgronomyRecord) error {
	if record.Action == "" {
		return errors.New("record action is required")
	}
	return s.db.Create(record).Error
}
