package controllers

import (
	"github.com/gin-gonic/gin"

	"agrisense-http-service/services/container"
)

// BaseController is the common interface for all controllers
type BaseController interface {
	GetContainer() *container.ServiceContainer
	GetContext() *gin.Context
}

// BaseControllerImpl is the shared controller implementation
type BaseControllerImpl struct {
	Container *container.ServiceContainer
	Context   *gin.Context
}

// GetContainer implements BaseController
func (c *BaseControllerImpl) GetContainer() *container.ServiceContainer {
	return c.Container
}

// GetContext implements BaseController
func (c *BaseControllerImpl) GetContext() *gin.Context {
	return c.Context
}

// ControllerFactory builds request-scoped controllers
type ControllerFactory struct {
	Container *container.ServiceContainer
}

// NewControllerFactory creates a new controller factory
func NewControllerFactory(container *container.ServiceContainer) *ControllerFactory {
	return &ControllerFactory{
		Container: container,
	}
}
