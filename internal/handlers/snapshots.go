package handlers

import (
	"fmt"
	"math"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"symptom-diary-server/internal/middleware"
	"symptom-diary-server/internal/models"
	"symptom-diary-server/internal/utils"
)

// SnapshotHandler handles diary snapshot requests.
type SnapshotHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(db *gorm.DB, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{DB: db, Logger: logger}
}

// BuildSummary computes the snapshot text over a set of entries: the day
// range covered (at least 1), the entry count and the mean severity to one
// decimal place.
func BuildSummary(entries []models.SymptomEntry) string {
	if len(entries) == 0 {
		return "No symptoms recorded"
	}

	var total int
	for _, e := range entries {
		total += e.Severity
	}
	avg := float64(total) / float64(len(entries))

	sorted := make([]models.SymptomEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	span := sorted[len(sorted)-1].Timestamp.Sub(sorted[0].Timestamp)
	days := int(math.Round(span.Hours() / 24))
	if days < 1 {
		days = 1
	}

	return fmt.Sprintf(
		"Over the last %d days, %d symptoms were recorded with an average severity of %.1f/10. "+
			"The final assessment rests with the treating physician.",
		days, len(entries), avg)
}

// CreateSnapshot generates and stores a summary over every entry the
// caller has recorded so far.
func (h *SnapshotHandler) CreateSnapshot(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var entries []models.SymptomEntry
	if err := h.DB.Where("user_id = ?", actor.UserID).Find(&entries).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch entries: "+err.Error())
		return
	}

	snapshot := models.Snapshot{
		UserID:      actor.UserID,
		SummaryText: BuildSummary(entries),
	}
	if err := h.DB.Create(&snapshot).Error; err != nil {
		utils.InternalServerError(c, "Failed to create snapshot: "+err.Error())
		return
	}

	utils.Created(c, "Snapshot created successfully", snapshot)
}

// ListMySnapshots returns the caller's snapshots, newest first.
func (h *SnapshotHandler) ListMySnapshots(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var snapshots []models.Snapshot
	if err := h.DB.Where("user_id = ?", actor.UserID).Order("created_at desc").Find(&snapshots).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch snapshots: "+err.Error())
		return
	}

	utils.Success(c, "Snapshots fetched successfully", snapshots)
}
