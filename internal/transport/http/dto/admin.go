package dto

import (
	"project_gallery/internal/domain/models"
)

// AdminRegisterInput содержит данные для регистрации администратора
type AdminRegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

func (input AdminRegisterInput) ToDomain(passwordHash []byte) models.Admin {
	return models.Admin{
		Name:     input.Name,
		Email:    input.Email,
		Password: passwordHash,
	}
}

type AdminResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
