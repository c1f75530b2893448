// Package syncerr — классификация ошибок синхронизации.
// От класса ошибки зависит реакция движка: транспортные ретраятся
// с бэкоффом, ошибки аутентификации фатальны, ошибки целостности
// отправляют элемент в карантин.
package syncerr

import "errors"

var (
	// ErrTransport — сетевой сбой или таймаут, ретраится с бэкоффом
	ErrTransport = errors.New("transport failure")

	// ErrAuth — отклоненный токен, фатально для сессии: нужен новый логин
	ErrAuth = errors.New("authentication rejected")

	// ErrIntegrity — не расшифровалось или не распарсилось:
	// элемент уходит в карантин, синхронизация продолжается
	ErrIntegrity = errors.New("integrity failure")

	// ErrCodeInvalid — единый ответ обмена кодом: просроченный,
	// использованный и несуществующий код неразличимы
	ErrCodeInvalid = errors.New("invalid or expired code")

	// ErrQueueItemDead — элемент очереди исчерпал попытки отправки
	ErrQueueItemDead = errors.New("queue item dead-lettered")
)
