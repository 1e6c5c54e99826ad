package request

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RefreshRequest struct {
	AdminID      string `json:"admin_id" validate:"required,uuid"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}
