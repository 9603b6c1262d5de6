package models

import (
	"strings"
	"time"
)

type User struct {
	ID                   string    `json:"id" yaml:"id"`
	Username             string    `json:"username" yaml:"username"`
	Email                string    `json:"email" yaml:"email"`
	Image                string    `json:"image" yaml:"image"`
	Role                 string    `json:"role" yaml:"role"`
	RecentSearchedCities []string  `json:"recentSearchedCities" yaml:"recent_searched_cities"`
	CreatedAt            time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt            time.Time `json:"updatedAt" yaml:"-"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Image: u.Image}
}

// PushRecentCity records a searched city, most recent last. A case-insensitive
// match is moved to the end; otherwise the oldest entry is evicted once the
// list holds MaxRecentSearchedCities.
func (u *User) PushRecentCity(city string) {
	city = strings.TrimSpace(city)
	if city == "" {
		return
	}

	for i, existing := range u.RecentSearchedCities {
		if strings.EqualFold(strings.TrimSpace(existing), city) {
			u.RecentSearchedCities = append(u.RecentSearchedCities[:i], u.RecentSearchedCities[i+1:]...)
			break
		}
	}

	if len(u.RecentSearchedCities) >= MaxRecentSearchedCities {
		u.RecentSearchedCities = u.RecentSearchedCities[len(u.RecentSearchedCities)-MaxRecentSearchedCities+1:]
	}
	u.RecentSearchedCities = append(u.RecentSearchedCities, city)
}
