package syncdata

import "errors"

var (
	// ErrNotFound — элемент не найден или принадлежит другому пользователю
	ErrNotFound = errors.New("item not found")

	// ErrSlotOutOfRange — номер слота вне допустимого диапазона
	ErrSlotOutOfRange = errors.New("slot number out of range")

	// ErrBlobTooLarge — зашифрованный blob превышает лимит размера
	ErrBlobTooLarge = errors.New("encrypted blob too large")

	// ErrInvalidInput — некорректные данные запроса
	ErrInvalidInput = errors.New("invalid input")
)
