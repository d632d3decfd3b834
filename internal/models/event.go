package models

import "time"

// Типы событий избранного; используются как routing key.
const (
	EventFavoriteCreated = "favorite.created"
	EventFavoriteUpdated = "favorite.updated"
	EventFavoriteDeleted = "favorite.deleted"
)

// FavoriteEvent сообщение об изменении избранного.
type FavoriteEvent struct {
	Type        string    `json:"type"`
	FavoriteID  string    `json:"favoriteId"`
	UserID      string    `json:"userId"`
	CountryCode string    `json:"countryCode,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}
