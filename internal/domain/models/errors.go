package models

import "errors"

var (
	// ErrInvalidInput - ошибка валидации запроса клиента, отдается как 400
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict - условная запись не прошла за отведенное число попыток
	ErrConflict = errors.New("concurrent update conflict")
)
