package dto

type BookAppointmentRequest struct {
	Service     string `json:"service"`
	Date        string `json:"date"` // RFC3339 or YYYY-MM-DD
	Time        string `json:"time"`
	Description string `json:"description"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Service     string `json:"service"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
}
