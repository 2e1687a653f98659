package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Appointment, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus, notes string) error
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if appt == nil {
		return nil, errors.New("nil appointment")
	}

	if err := r.db.WithContext(ctx).Create(appt).Error; err != nil {
		log.Printf("create appointment error: %v", err)
		return nil, fmt.Errorf("%w: create appointment", domain.ErrUnavailable)
	}
	return appt, nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	appt := &domain.Appointment{}

	if err := r.db.WithContext(ctx).First(appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		log.Printf("find appointment error: %v", err)
		return nil, fmt.Errorf("%w: find appointment", domain.ErrUnavailable)
	}
	return appt, nil
}

func (r *appointmentRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Appointment, error) {
	var appts []domain.Appointment

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Limit(limit).Offset(offset).
		Find(&appts).Error
	if err != nil {
		log.Printf("list appointments by user error: %v", err)
		return nil, fmt.Errorf("%w: list appointments", domain.ErrUnavailable)
	}
	return appts, nil
}

func (r *appointmentRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Appointment, error) {
	var appts []domain.Appointment

	err := r.db.WithContext(ctx).
		Order("date ASC").
		Limit(limit).Offset(offset).
		Find(&appts).Error
	if err != nil {
		log.Printf("list appointments error: %v", err)
		return nil, fmt.Errorf("%w: list appointments", domain.ErrUnavailable)
	}
	return appts, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus, notes string) error {
	updates := map[string]interface{}{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}

	res := r.db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("id = ?", id).
		Updates(updates)

	if res.Error != nil {
		log.Printf("update appointment status error: %v", res.Error)
		return fmt.Errorf("%w: update appointment status", domain.ErrUnavailable)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
