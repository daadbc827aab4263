package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agrisense-http-service/config"
	"agrisense-http-service/internal/error/code"
	"agrisense-http-service/internal/error/response"
	"agrisense-http-service/models"
	"agrisense-http-service/services/container"
)

// CropController handles crop CRUD requests
type CropController struct {
	BaseControllerImpl
}

// NewCropController creates a new crop controller
func (f *ControllerFactory) NewCropController(ctx *gin.Context) *CropController {
	return &CropController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// GetCrops lists the authenticated user's crops
func (c *CropController) GetCrops() {
	var query models.PaginationQuery
	if err := c.Context.ShouldBindQuery(&query); err != nil {
		response.ParamError(c.Context, "invalid pagination parameters")
		return
	}

	userID := c.Context.GetUint("userID")
	crops, pagination, err := c.Container.GetCropService().GetCrops(userID, query)
	if err != nil {
		config.Error("crop listing failed for user %d: %v", userID, err)
		response.ServerError(c.Context)
		return
	}

	response.Success(c.Context, gin.H{
		"crops":      crops,
		"pagination": pagination,
	})
}

// GetCrop fetches one crop by ID
func (c *CropController) GetCrop() {
	id, err := strconv.ParseUint(c.Context.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Context, "invalid crop id")
		return
	}

	crop, err := c.Container.GetCropService().GetCropByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c.Context, code.ErrCropNotFound, nil)
			return
		}
		config.Error("crop lookup failed: %v", err)
		response.ServerError(c.Context)
		return
	}

	response.Success(c.Context, crop)
}

// CropRequest is the crop creation/update body
type CropRequest struct {
	Name           string     `json:"name" binding:"required"`
	CropType       string     `json:"cropType" binding:"required"`
	ZoneID         string     `json:"zoneId"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	AreaHectares   float64    `json:"areaHectares"`
	SowingDate     *time.Time `json:"sowingDate"`
	IrrigationType string     `json:"irrigationType"`
}

// CreateCrop registers a new crop for the authenticated user
func (c *CropController) CreateCrop() {
	var req CropRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "name and cropType are required")
		return
	}

	crop := models.Crop{
		UserID:         c.Context.GetUint("userID"),
		Name:           req.Name,
		CropType:       strings.ToLower(req.CropType),
		ZoneID:         req.ZoneID,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AreaHectares:   req.AreaHectares,
		SowingDate:     req.SowingDate,
		IrrigationType: req.IrrigationType,
	}

	if err := c.Container.GetCropService().CreateCrop(&crop); err != nil {
		if strings.Contains(err.Error(), "unsupported crop type") {
			response.Fail(c.Context, code.ErrCropTypeUnknown, gin.H{"cropType": req.CropType})
			return
		}
		config.Error("crop creation failed: %v", err)
		response.ServerError(c.Context)
		return
	}

	c.Context.JSON(http.StatusCreated, gin.H{
		"code":    code.ErrSuccess,
		"message": "success",
		"data":    crop,
	})
}

// UpdateCrop applies partial updates to a crop
func (c *CropController) UpdateCrop() {
	id, err := strconv.ParseUint(c.Context.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Context, "invalid crop id")
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		response.ParamError(c.Context, "no updates provided")
		return
	}

	// Only whitelisted columns are updatable.
	allowed := map[string]string{
		"name":           "name",
		"cropType":       "crop_type",
		"zoneId":         "zone_id",
		"latitude":       "latitude",
		"longitude":      "longitude",
		"areaHectares":   "area_hectares",
		"sowingDate":     "sowing_date",
		"irrigationType": "irrigation_type",
	}
	columns := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		if column, ok := allowed[key]; ok {
			columns[column] = value
		}
	}
	if len(columns) == 0 {
		response.ParamError(c.Context, "no updatable fields provided")
		return
	}

	crop, err := c.Container.GetCropService().UpdateCrop(uint(id), columns)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c.Context, code.ErrCropNotFound, nil)
			return
		}
		if strings.Contains(err.Error(), "unsupported crop type") {
			response.Fail(c.Context, code.ErrCropTypeUnknown, nil)
			return
		}
		config.Error("crop update failed: %v", err)
		response.ServerError(c.Context)
		return
	}

	response.Success(c.Context, crop)
}

// DeleteCrop removes a crop and its agronomy history
func (c *CropController) DeleteCrop() {
	id, err := strconv.ParseUint(c.Context.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Context, "invalid crop id")
		return
	}

	if err := c.Container.GetCropService().DeleteCrop(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c.Context, code.ErrCropNotFound, nil)
			return
		}
		config.Error("crop deletion failed: %v", err)
		response.ServerError(c.Context)
		return
	}

	response.Success(c.Context, nil)
}

// HandleCropFunc returns a Gin handler dispatching to the crop controller
func HandleCropFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)

	return func(ctx *gin.Context) {
		controller := factory.NewCropController(ctx)

		switch method {
		case "getCrops":
			controller.GetCrops()
		case "getCrop":
			controller.GetCrop()
		case "createCrop":
			controller.CreateCrop()
		case "updateCrop":
			controller.UpdateCrop()
		case "deleteCrop":
			controller.DeleteCrop()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
