package dto

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Provider string `json:"provider"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type UserLogin struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string              `json:"token"`
	User  UserProfileResponse `json:"user"`
}

type UserProfileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
	Role  string `json:"role"`
}

// AuthResponse is the decoded session token carried through fiber Locals.
type AuthResponse struct {
	UserID string  `json:"user_id"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	Iat    float64 `json:"iat"`
	Expiry float64 `json:"expiry"`
}
