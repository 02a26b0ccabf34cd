package catalog

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates a new catalog feature.
func NewFeature(catalog *Catalog, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(catalog, logger)}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return "catalog"
}

// IsEnabled returns true if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
