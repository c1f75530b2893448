package user

import "github.com/google/uuid"

type credentials struct {
	Email    string `json:"email" doc:"Email пользователя" example:"user@example.com"`
	Password string `json:"password" doc:"Пароль, минимум 8 символов"`
}

type registerInput struct {
	Body credentials
}

type registerOutput struct {
	Body AuthResponse
}

type loginInput struct {
	Body credentials
}

type loginOutput struct {
	Body AuthResponse
}

// AuthResponse — единый ответ регистрации и логина
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
	Status string    `json:"status"`
}
