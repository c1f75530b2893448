package link

import "errors"

var (
	// ErrCodeInvalid — единый ответ на неизвестный, просроченный
	// или уже использованный код. Причину не раскрываем.
	ErrCodeInvalid = errors.New("invalid or expired code")

	// ErrInvalidInput — некорректные данные запроса
	ErrInvalidInput = errors.New("invalid input")
)
