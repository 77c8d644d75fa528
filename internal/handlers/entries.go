package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"symptom-diary-server/internal/middleware"
	"symptom-diary-server/internal/models"
	"symptom-diary-server/internal/utils"
)

// EntryHandler handles symptom diary entry requests.
type EntryHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(db *gorm.DB, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{DB: db, Logger: logger}
}

// CreateEntryRequest represents the request body for recording a symptom.
type CreateEntryRequest struct {
	Title       string    `json:"title" binding:"required,max=150"`
	Description string    `json:"description"`
	Severity    int       `json:"severity" binding:"required,gte=1,lte=10"`
	Timestamp   time.Time `json:"timestamp" binding:"required"`
	Tags        string    `json:"tags"`
}

// CreateEntry records a new symptom for the authenticated user.
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateEntryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	entry := models.SymptomEntry{
		UserID:      actor.UserID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Timestamp:   req.Timestamp,
		Tags:        req.Tags,
	}

	if err := h.DB.Create(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to create entry: "+err.Error())
		return
	}

	utils.Created(c, "Entry created successfully", entry)
}

// ListMyEntries returns the caller's entries, newest first, with optional
// from/to timestamp bounds (RFC 3339) and a tag substring filter.
func (h *EntryHandler) ListMyEntries(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	query := h.DB.Where("user_id = ?", actor.UserID)

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			utils.BadRequest(c, "Invalid 'from' timestamp, expected RFC 3339")
			return
		}
		query = query.Where("timestamp >= ?", from)
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			utils.BadRequest(c, "Invalid 'to' timestamp, expected RFC 3339")
			return
		}
		query = query.Where("timestamp <= ?", to)
	}
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("tags LIKE ?", "%"+tag+"%")
	}

	var entries []models.SymptomEntry
	if err := query.Order("timestamp desc").Find(&entries).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch entries: "+err.Error())
		return
	}

	utils.Success(c, "Entries fetched successfully", entries)
}

// UpdateEntryRequest represents the partial-update body for an entry.
type UpdateEntryRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=150"`
	Description *string    `json:"description"`
	Severity    *int       `json:"severity" binding:"omitempty,gte=1,lte=10"`
	Timestamp   *time.Time `json:"timestamp"`
	Tags        *string    `json:"tags"`
}

// UpdateEntry applies a partial update to one of the caller's own entries.
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateEntryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var entry models.SymptomEntry
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), actor.UserID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Entry not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Title != nil {
		entry.Title = *req.Title
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Severity != nil {
		entry.Severity = *req.Severity
	}
	if req.Timestamp != nil {
		entry.Timestamp = *req.Timestamp
	}
	if req.Tags != nil {
		entry.Tags = *req.Tags
	}

	if err := h.DB.Save(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to update entry: "+err.Error())
		return
	}

	utils.Success(c, "Entry updated successfully", entry)
}

// DeleteEntry removes one of the caller's own entries.
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var entry models.SymptomEntry
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), actor.UserID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Entry not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete entry: "+err.Error())
		return
	}

	utils.Success(c, "Entry deleted successfully", gin.H{"status": "deleted"})
}

// EntryAdminRow is an entry joined with its owner's contact identity.
type EntryAdminRow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    int       `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	Tags        string    `json:"tags,omitempty"`
	UserID      string    `json:"userId"`
	UserEmail   string    `json:"userEmail"`
}

// ListAllEntries returns every entry in the system joined with the owner's
// email, newest first. Admin only.
func (h *EntryHandler) ListAllEntries(c *gin.Context) {
	var rows []EntryAdminRow
	err := h.DB.Table("symptom_entries").
		Select("symptom_entries.id, symptom_entries.title, symptom_entries.description, symptom_entries.severity, symptom_entries.timestamp, symptom_entries.tags, symptom_entries.user_id, users.email AS user_email").
		Joins("JOIN users ON users.id = symptom_entries.user_id").
		Order("symptom_entries.timestamp desc").
		Scan(&rows).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch entries: "+err.Error())
		return
	}

	utils.Success(c, "Entries fetched successfully", rows)
}
