package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"symptom-diary-server/internal/middleware"
	"symptom-diary-server/internal/models"
	"symptom-diary-server/internal/pdf"
	"symptom-diary-server/internal/utils"
)

// errNotOwner is raised inside a transition transaction when the caller
// does not own the appointment.
var errNotOwner = errors.New("appointment belongs to another user")

// AppointmentHandler handles booking and negotiation requests.
type AppointmentHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Logger: logger}
}

// forUpdate adds a row lock so a transition's read and write act as one
// step against concurrent callers. SQLite has no FOR UPDATE syntax; its
// write transactions are exclusive already.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// respondError maps storage and transition errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.NotFound(c, "Appointment not found")
	case errors.Is(err, models.ErrSlotTaken):
		utils.Conflict(c, err.Error())
	case errors.Is(err, models.ErrInvalidStatus), errors.Is(err, models.ErrNoProposal):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, errNotOwner):
		utils.Forbidden(c, "You are not authorized to act on this appointment")
	default:
		utils.InternalServerError(c, "Database error: "+err.Error())
	}
}

// Availability lists the booked times for a facility on a given date, as
// HH:MM strings sorted ascending. Every appointment counts as booked
// regardless of status: a rejected booking does not free its slot.
func (h *AppointmentHandler) Availability(c *gin.Context) {
	facility := c.Query("facility")
	if facility == "" {
		utils.BadRequest(c, "'facility' query parameter is required")
		return
	}
	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.BadRequest(c, "'date' query parameter must be a valid YYYY-MM-DD date")
		return
	}

	bookedTimes := []string{}
	err := h.DB.Model(&models.Appointment{}).
		Where("facility = ? AND date = ?", facility, date).
		Order("time asc").
		Pluck("time", &bookedTimes).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch availability: "+err.Error())
		return
	}

	utils.Success(c, "Availability fetched successfully", bookedTimes)
}

// CreateAppointmentRequest represents the request body for booking a visit.
// The referral document travels base64-encoded and is stored as-is.
type CreateAppointmentRequest struct {
	Facility         string `json:"facility" binding:"required"`
	Date             string `json:"date" binding:"required,datetime=2006-01-02"`
	Time             string `json:"time" binding:"required,datetime=15:04"`
	AttachmentName   string `json:"attachmentName" binding:"required"`
	AttachmentBase64 string `json:"attachmentBase64" binding:"required"`
}

// CreateAppointment books a visit for the authenticated patient. The slot
// existence check and the insert run in one transaction so two concurrent
// requests cannot both take the same slot.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.AttachmentBase64)
	if err != nil {
		utils.BadRequest(c, "attachmentBase64 is not valid base64")
		return
	}

	appointment := models.Appointment{
		UserID:         actor.UserID,
		Facility:       req.Facility,
		Date:           req.Date,
		Time:           req.Time,
		Status:         models.StatusPending,
		AttachmentName: req.AttachmentName,
		AttachmentData: payload,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := forUpdate(tx).Model(&models.Appointment{}).
			Where("facility = ? AND date = ? AND time = ?", req.Facility, req.Date, req.Time).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.ErrSlotTaken
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.Info("appointment created",
		zap.String("appointment_id", appointment.ID),
		zap.String("facility", appointment.Facility),
		zap.String("date", appointment.Date),
		zap.String("time", appointment.Time))
	utils.Created(c, "Appointment created successfully", appointment)
}

// ListMyAppointments returns the caller's appointments, most recent slot
// first.
func (h *AppointmentHandler) ListMyAppointments(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointments []models.Appointment
	err := h.DB.Where("user_id = ?", actor.UserID).
		Order("date desc").Order("time desc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// AppointmentAdminRow is an appointment joined with its owner's contact
// identity for the admin triage view.
type AppointmentAdminRow struct {
	ID             string                   `json:"id"`
	Facility       string                   `json:"facility"`
	Date           string                   `json:"date"`
	Time           string                   `json:"time"`
	Status         models.AppointmentStatus `json:"status"`
	AttachmentName string                   `json:"attachmentName"`
	UserID         string                   `json:"userId"`
	UserEmail      string                   `json:"userEmail"`
}

// ListAllAppointments returns every appointment with the owner's email,
// same ordering as the patient view. Admin only.
func (h *AppointmentHandler) ListAllAppointments(c *gin.Context) {
	var rows []AppointmentAdminRow
	err := h.DB.Table("appointments").
		Select("appointments.id, appointments.facility, appointments.date, appointments.time, appointments.status, appointments.attachment_name, appointments.user_id, users.email AS user_email").
		Joins("JOIN users ON users.id = appointments.user_id").
		Order("appointments.date desc").Order("appointments.time desc").
		Scan(&rows).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", rows)
}

// UpdateStatusRequest represents the admin confirm/reject decision body.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus lets an admin confirm or reject an appointment. Any other
// status literal is refused and leaves the record untouched.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	decision, err := models.ParseDecision(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	appointment, err := h.transition(c.Param("id"), func(a *models.Appointment) error {
		return a.Decide(decision)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.Info("appointment decided",
		zap.String("appointment_id", appointment.ID),
		zap.String("status", string(appointment.Status)))
	utils.Success(c, "Appointment status updated successfully", appointment)
}

// ProposeRequest represents the admin counter-proposal body.
type ProposeRequest struct {
	ProposedDate string `json:"proposedDate" binding:"required,datetime=2006-01-02"`
	ProposedTime string `json:"proposedTime" binding:"required,datetime=15:04"`
}

// Propose lets an admin counter-propose a new slot. The proposal replaces
// any prior status, including terminal ones; re-opening a closed
// negotiation is allowed on purpose.
func (h *AppointmentHandler) Propose(c *gin.Context) {
	var req ProposeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.transition(c.Param("id"), func(a *models.Appointment) error {
		a.Propose(req.ProposedDate, req.ProposedTime)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.Info("slot proposed",
		zap.String("appointment_id", appointment.ID),
		zap.String("proposed_date", req.ProposedDate),
		zap.String("proposed_time", req.ProposedTime))
	utils.Success(c, "New slot proposed successfully", appointment)
}

// AcceptProposal lets the owning patient adopt the proposed slot.
func (h *AppointmentHandler) AcceptProposal(c *gin.Context) {
	h.resolveProposal(c, (*models.Appointment).AcceptProposal, "Proposal accepted successfully")
}

// RejectProposal lets the owning patient decline the proposed slot.
func (h *AppointmentHandler) RejectProposal(c *gin.Context) {
	h.resolveProposal(c, (*models.Appointment).RejectProposal, "Proposal rejected successfully")
}

func (h *AppointmentHandler) resolveProposal(c *gin.Context, resolve func(*models.Appointment) error, message string) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.transition(c.Param("id"), func(a *models.Appointment) error {
		if a.UserID != actor.UserID {
			return errNotOwner
		}
		return resolve(a)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.Info("proposal resolved",
		zap.String("appointment_id", appointment.ID),
		zap.String("status", string(appointment.Status)))
	utils.Success(c, message, appointment)
}

// transition loads an appointment under a row lock, applies fn and saves
// the result, all in one transaction. On any error the record is left
// untouched.
func (h *AppointmentHandler) transition(id string, fn func(*models.Appointment) error) (*models.Appointment, error) {
	var appointment models.Appointment
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&appointment, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&appointment); err != nil {
			return err
		}
		// Save writes every column, so cleared proposal fields land as NULL.
		return tx.Save(&appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// DownloadDiaryPDF renders the full symptom diary of the appointment's
// owner and returns it as a PDF attachment. Admin only.
func (h *AppointmentHandler) DownloadDiaryPDF(c *gin.Context) {
	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", appointment.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var entries []models.SymptomEntry
	err := h.DB.Where("user_id = ?", user.ID).
		Order("timestamp asc").
		Find(&entries).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch entries: "+err.Error())
		return
	}
	if len(entries) == 0 {
		utils.NotFound(c, "No symptoms recorded")
		return
	}

	data, err := pdf.BuildDiary(&user, entries)
	if err != nil {
		utils.InternalServerError(c, "Failed to render diary: "+err.Error())
		return
	}

	c.Writer.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", pdf.DiaryFilename(user.Email)))
	c.Data(http.StatusOK, "application/pdf", data)
}

// DownloadAttachment returns the referral document stored at booking time,
// byte for byte. Available to the owner and to admins.
func (h *AppointmentHandler) DownloadAttachment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}

	if !actor.IsAdmin && appointment.UserID != actor.UserID {
		utils.Forbidden(c, "You are not authorized to view this attachment")
		return
	}

	c.Writer.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", appointment.AttachmentName))
	c.Data(http.StatusOK, "application/octet-stream", appointment.AttachmentData)
}
