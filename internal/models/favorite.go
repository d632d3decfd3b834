package models

import "time"

// MaxFavoriteTextLen — максимальная длина label и note в символах.
const MaxFavoriteTextLen = 100

// Favorite — страна в избранном пользователя.
// Пара (UserID, CountryCode) уникальна.
type Favorite struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	CountryCode string    `json:"countryCode"`
	Label       *string   `json:"label,omitempty"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FavoritePatch — изменяемые поля избранного. nil означает «поле не трогать».
type FavoritePatch struct {
	Label *string
	Note  *string
}

// Empty сообщает, что в патче нет ни одного поля.
func (p FavoritePatch) Empty() bool {
	return p.Label == nil && p.Note == nil
}
