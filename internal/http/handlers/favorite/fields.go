// Package favorite содержит общие для обработчиков избранного помощники.
package favorite

import "encoding/json"

// Text разбирает необязательное строковое поле тела запроса.
// nil означает, что поле не передано; значение не-строкового типа
// считается пустой строкой.
func Text(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = ""
	}
	return &s
}

// Location путь созданной записи для заголовка Location.
func Location(id string) string {
	return "/api/favorites/" + id
}
