package models

import (
	"errors"
	"strings"
)

// AppointmentStatus represents where a booking sits in the negotiation
// between the patient and the clinic administrator.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusRejected  AppointmentStatus = "REJECTED"
	StatusProposed  AppointmentStatus = "PROPOSED"
)

// Errors surfaced by appointment state transitions. Handlers map these onto
// HTTP status codes.
var (
	// ErrSlotTaken: another appointment already occupies the (facility,
	// date, time) slot. Rejected appointments keep their slot booked, so
	// they block creation too.
	ErrSlotTaken = errors.New("slot already booked for this facility")
	// ErrInvalidStatus: an admin decision outside CONFIRMED/REJECTED.
	ErrInvalidStatus = errors.New("status must be CONFIRMED or REJECTED")
	// ErrNoProposal: accept/reject called while no proposal is pending.
	ErrNoProposal = errors.New("no pending proposal on this appointment")
)

// Appointment is one booking request and its negotiation thread. Date and
// Time are naive local values stored as "2006-01-02" and "15:04" strings;
// both orderings and slot equality work directly on the zero-padded text.
type Appointment struct {
	BaseModel
	// The slot index is deliberately non-unique: exclusivity is enforced
	// only at creation time, and an accepted proposal may legitimately
	// move an appointment onto an already-occupied slot.
	UserID   string `gorm:"size:36;index;not null" json:"userId"`
	Facility string `gorm:"size:255;not null;index:idx_facility_slot" json:"facility"`
	Date     string `gorm:"size:10;not null;index:idx_facility_slot" json:"date"`
	Time     string `gorm:"size:5;not null;index:idx_facility_slot" json:"time"`

	ProposedDate *string           `gorm:"size:10" json:"proposedDate,omitempty"`
	ProposedTime *string           `gorm:"size:5" json:"proposedTime,omitempty"`
	Status       AppointmentStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`

	// Referral document uploaded by the patient at creation. Stored and
	// returned verbatim; the payload is never inspected.
	AttachmentName string `gorm:"size:255;not null" json:"attachmentName"`
	AttachmentData []byte `gorm:"type:longblob;not null" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// ParseDecision normalizes an admin status decision. Only the two terminal
// literals are accepted; anything else is ErrInvalidStatus.
func ParseDecision(raw string) (AppointmentStatus, error) {
	switch s := AppointmentStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusConfirmed, StatusRejected:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Decide applies an admin confirm/reject decision.
func (a *Appointment) Decide(status AppointmentStatus) error {
	if status != StatusConfirmed && status != StatusRejected {
		return ErrInvalidStatus
	}
	a.Status = status
	return nil
}

// Propose records an admin counter-proposal for a new slot. It is
// intentionally unconditional on the current status: an admin may re-open
// negotiation over a confirmed or rejected appointment, discarding the
// prior outcome.
func (a *Appointment) Propose(date, timeOfDay string) {
	a.ProposedDate = &date
	a.ProposedTime = &timeOfDay
	a.Status = StatusProposed
}

// AcceptProposal adopts the proposed slot as the agreed one and confirms
// the appointment. Valid only while a proposal is pending.
func (a *Appointment) AcceptProposal() error {
	if a.Status != StatusProposed || a.ProposedDate == nil || a.ProposedTime == nil {
		return ErrNoProposal
	}
	a.Date = *a.ProposedDate
	a.Time = *a.ProposedTime
	a.ProposedDate = nil
	a.ProposedTime = nil
	a.Status = StatusConfirmed
	return nil
}

// RejectProposal declines the proposed slot. The originally agreed date and
// time stay on the record; the appointment ends up rejected.
func (a *Appointment) RejectProposal() error {
	if a.Status != StatusProposed {
		return ErrNoProposal
	}
	a.ProposedDate = nil
	a.ProposedTime = nil
	a.Status = StatusRejected
	return nil
}
