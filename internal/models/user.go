// Package models содержит доменные структуры приложения: пользователя,
// избранную страну и нормализованную запись справочника стран.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    // Идентификатор пользователя (UUID)
	Name         string    // Отображаемое имя
	Email        string    // Электронная почта, в нижнем регистре
	PasswordHash string    // bcrypt-хэш пароля
	CreatedAt    time.Time // Дата регистрации
	UpdatedAt    time.Time
}
