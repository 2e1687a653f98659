package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/dto"
	"github.com/CodeCraftStudio/auth_service/internal/interfaces"
	"github.com/CodeCraftStudio/auth_service/internal/repository"
)

const (
	maxDescriptionLen = 500
	maxNotesLen       = 1000
)

type AppointmentService interface {
	Book(ctx context.Context, userID string, input dto.BookAppointmentRequest) (*domain.Appointment, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Appointment, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, appointmentID string, input dto.UpdateAppointmentStatusRequest) (*domain.Appointment, error)
}

type appointmentService struct {
	repo     repository.AppointmentRepository
	producer interfaces.ProducerHandler
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	producer interfaces.ProducerHandler,
) AppointmentService {
	return &appointmentService{
		repo:     repo,
		producer: producer,
	}
}

func (s *appointmentService) Book(ctx context.Context, userID string, input dto.BookAppointmentRequest) (*domain.Appointment, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	service, ok := parseService(input.Service)
	if !ok {
		return nil, fmt.Errorf("%w: unknown service", domain.ErrValidation)
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", domain.ErrValidation)
	}

	slot := strings.TrimSpace(input.Time)
	if slot == "" {
		return nil, fmt.Errorf("%w: time slot is required", domain.ErrValidation)
	}

	desc := strings.TrimSpace(input.Description)
	if desc == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if len(desc) > maxDescriptionLen {
		return nil, fmt.Errorf("%w: description too long", domain.ErrValidation)
	}

	appt := &domain.Appointment{
		UserID:      userID,
		Service:     service,
		Date:        date,
		Time:        slot,
		Description: desc,
		Status:      domain.AppointmentPending,
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, err
	}

	if s.producer != nil {
		payload := fmt.Sprintf(
			`{"appointment_id":"%s","user_id":"%s","service":"%s","date":"%s","time":"%s"}`,
			created.ID, created.UserID, created.Service, created.Date.Format("2006-01-02"), created.Time,
		)
		if err := s.producer.PublishMessage([]byte("appointment.created"), []byte(payload)); err != nil {
			log.Printf("publish appointment.created failed: %v", err)
		}
	}

	return created, nil
}

func (s *appointmentService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Appointment, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByUserID(ctx, userID, clampLimit(limit), offset)
}

func (s *appointmentService) ListAll(ctx context.Context, limit, offset int) ([]domain.Appointment, error) {
	return s.repo.ListAll(ctx, clampLimit(limit), offset)
}

func (s *appointmentService) UpdateStatus(ctx context.Context, appointmentID string, input dto.UpdateAppointmentStatusRequest) (*domain.Appointment, error) {
	if appointmentID == "" {
		return nil, fmt.Errorf("%w: appointment id is required", domain.ErrValidation)
	}

	status, ok := parseStatus(input.Status)
	if !ok {
		return nil, fmt.Errorf("%w: invalid status", domain.ErrValidation)
	}

	notes := strings.TrimSpace(input.Notes)
	if len(notes) > maxNotesLen {
		return nil, fmt.Errorf("%w: notes too long", domain.ErrValidation)
	}

	if err := s.repo.UpdateStatus(ctx, appointmentID, status, notes); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, appointmentID)
}

func parseService(raw string) (domain.AppointmentService, bool) {
	switch domain.AppointmentService(strings.TrimSpace(raw)) {
	case domain.ServiceConsultation:
		return domain.ServiceConsultation, true
	case domain.ServiceProjectDiscussion:
		return domain.ServiceProjectDiscussion, true
	case domain.ServiceTechnicalSupport:
		return domain.ServiceTechnicalSupport, true
	case domain.ServiceDemo:
		return domain.ServiceDemo, true
	case domain.ServiceOther:
		return domain.ServiceOther, true
	}
	return "", false
}

func parseStatus(raw string) (domain.AppointmentStatus, bool) {
	switch domain.AppointmentStatus(strings.TrimSpace(strings.ToLower(raw))) {
	case domain.AppointmentPending:
		return domain.AppointmentPending, true
	case domain.AppointmentConfirmed:
		return domain.AppointmentConfirmed, true
	case domain.AppointmentCompleted:
		return domain.AppointmentCompleted, true
	case domain.AppointmentCancelled:
		return domain.AppointmentCancelled, true
	}
	return "", false
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
