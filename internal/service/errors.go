package service

import (
	"fmt"
	"strings"
)

// ValidationError — нарушение полевых правил валидации. Содержит
// упорядоченный список человекочитаемых сообщений обо всех нарушениях.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func newValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// NotFoundError — ссылка на несуществующую сущность (фильм, пользователя,
// жанр или рейтинг MPA).
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s с ID %d не найден", e.Entity, e.ID)
}

func newNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError — конфликт с уже существующими данными,
// например занятый email при создании пользователя.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
