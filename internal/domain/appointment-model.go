package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentService string

const (
	ServiceConsultation      AppointmentService = "Consultation"
	ServiceProjectDiscussion AppointmentService = "Project Discussion"
	ServiceTechnicalSupport  AppointmentService = "Technical Support"
	ServiceDemo              AppointmentService = "Demo"
	ServiceOther             AppointmentService = "Other"
)

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID          string             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string             `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User              `gorm:"foreignKey:UserID" json:"-"`
	Service     AppointmentService `gorm:"type:varchar(30);not null" json:"service"`
	Date        time.Time          `gorm:"not null" json:"date"`
	Time        string             `gorm:"not null" json:"time"`
	Description string             `gorm:"type:varchar(500);not null" json:"description"`
	Status      AppointmentStatus  `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Notes       string             `gorm:"type:varchar(1000)" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
