// Package loader provides the feature loading system of the server.
//
// Each feature implements the Feature interface and registers its own
// routes when loaded:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(router fiber.Router) error
//	}
//
// The Manager keeps features in registration order and loads the enabled
// ones with LoadAll.
package loader
