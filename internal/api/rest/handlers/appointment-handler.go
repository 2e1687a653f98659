package handlers

import (
	"time"

	"github.com/CodeCraftStudio/auth_service/internal/api/rest/middleware"
	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/dto"
	"github.com/CodeCraftStudio/auth_service/internal/helper"
	"github.com/CodeCraftStudio/auth_service/internal/helper/utils"
	"github.com/CodeCraftStudio/auth_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AppointmentHandler struct {
	svc     services.AppointmentService
	authSvc services.AuthService
	auth    helper.Auth
}

func NewAppointmentHandler(svc services.AppointmentService, authSvc services.AuthService, authHelper helper.Auth) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, authSvc: authSvc, auth: authHelper}
}

func (h *AppointmentHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	appts := api.Group("/appointments", middleware.AuthMiddleware(h.auth))

	appts.Post("/", h.Book)
	appts.Get("/", h.ListMine)

	admin := appts.Group("", middleware.AdminOnly(h.authSvc))
	admin.Get("/all", h.ListAll)
	admin.Patch("/:appointmentID/status", h.UpdateStatus)
}

// POST /api/appointments
func (h *AppointmentHandler) Book(ctx *fiber.Ctx) error {
	userID, ok := ctx.Locals("userID").(string)
	if !ok || userID == "" {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}

	var requestBody dto.BookAppointmentRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "please provide valid inputs")
	}

	appt, err := h.svc.Book(ctx.UserContext(), userID, requestBody)
	if err != nil {
		return respondAuthError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusCreated, appointmentResponse(appt))
}

// GET /api/appointments
func (h *AppointmentHandler) ListMine(ctx *fiber.Ctx) error {
	userID, ok := ctx.Locals("userID").(string)
	if !ok || userID == "" {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}

	appts, err := h.svc.ListForUser(ctx.UserContext(), userID, ctx.QueryInt("limit"), ctx.QueryInt("offset"))
	if err != nil {
		return respondAuthError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, appointmentResponses(appts))
}

// GET /api/appointments/all (admin)
func (h *AppointmentHandler) ListAll(ctx *fiber.Ctx) error {
	appts, err := h.svc.ListAll(ctx.UserContext(), ctx.QueryInt("limit"), ctx.QueryInt("offset"))
	if err != nil {
		return respondAuthError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, appointmentResponses(appts))
}

// PATCH /api/appointments/:appointmentID/status (admin)
func (h *AppointmentHandler) UpdateStatus(ctx *fiber.Ctx) error {
	appointmentID := ctx.Params("appointmentID")

	var requestBody dto.UpdateAppointmentStatusRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "please provide valid inputs")
	}

	appt, err := h.svc.UpdateStatus(ctx.UserContext(), appointmentID, requestBody)
	if err != nil {
		return respondAuthError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, appointmentResponse(appt))
}

func appointmentResponse(appt *domain.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:          appt.ID,
		UserID:      appt.UserID,
		Service:     string(appt.Service),
		Date:        appt.Date.Format("2006-01-02"),
		Time:        appt.Time,
		Description: appt.Description,
		Status:      string(appt.Status),
		Notes:       appt.Notes,
		CreatedAt:   appt.CreatedAt.Format(time.RFC3339),
	}
}

func appointmentResponses(appts []domain.Appointment) []dto.AppointmentResponse {
	out := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, appointmentResponse(&appts[i]))
	}
	return out
}
