// Package password реализует хеширование и проверку паролей на bcrypt.
//
// GetHash создает bcrypt-хеш пароля для хранения.
// CompareHash сравнивает сохранённый хеш с введённым паролем.
// CompareDummy выполняет такую же по стоимости проверку, когда пользователь не найден.
package password

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Cost — число раундов bcrypt (2^10).
const Cost = 10

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CompareDummy сравнивает пароль с заранее посчитанным хешем и всегда
// возвращает ошибку. Вызывается для несуществующего email, чтобы время ответа
// не выдавало наличие учётной записи.
func CompareDummy(externalPassword string) error {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("geobee-dummy-password"), Cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(externalPassword))
	return fmt.Errorf("password.CompareDummy: %w", bcrypt.ErrMismatchedHashAndPassword)
}
