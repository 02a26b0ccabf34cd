package catalog

import (
	"errors"

	"dirsync/core/logger"
	"dirsync/core/models"
	"dirsync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	catalog *Catalog
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(catalog *Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers the catalog routes and the static file mount.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/list", h.HandleList)
	app.Get("/dir", h.HandleDir)
	app.Static("/files", h.catalog.Root(), fiber.Static{
		ByteRange: true,
	})
}

// HandleList returns the catalog records under a prefix.
// @Summary List Files
// @Description List catalog records whose path starts with prefix. With update set, each record is re-checked on disk first.
// @Tags catalog
// @Produce json
// @Param prefix query string false "Path prefix (empty lists everything)"
// @Param update query string false "Refresh from disk (1, true, TRUE, ON)"
// @Success 200 {object} models.ListResponse "Matching files"
// @Failure 500 {object} models.ErrorResponse "Internal Server Error"
// @Router /list [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	prefix := c.Query("prefix")
	refresh := utils.IsTruthy(c.Query("update"))
	l := logger.WithRayID(h.logger, c)

	records, err := h.catalog.ListByPrefix(c.UserContext(), prefix, refresh)
	if err != nil {
		l.Error("Listing failed", zap.String("prefix", prefix), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: err.Error()})
	}

	resp := models.ListResponse{Files: make([]models.FileEntry, 0, len(records))}
	for _, rec := range records {
		resp.Files = append(resp.Files, rec.Entry())
	}

	l.Debug("Listed files",
		zap.String("prefix", prefix),
		zap.Bool("update", refresh),
		zap.Int("count", len(resp.Files)),
	)
	return c.JSON(resp)
}

// HandleDir returns the directory summary built by the last scan.
// @Summary Directory Tree
// @Description Get the directory tree with per-directory file counts.
// @Tags catalog
// @Produce json
// @Success 200 {object} models.DirResponse "Directory tree"
// @Failure 503 {object} models.ErrorResponse "Catalog not scanned yet"
// @Router /dir [get]
func (h *Handler) HandleDir(c *fiber.Ctx) error {
	tree, err := h.catalog.DescribeTree()
	if errors.Is(err, ErrNotScanned) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Describe tree failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(models.DirResponse{Dir: tree})
}
