package models

import "time"

// GuessBuckets — интервалы распределения количества попыток.
var GuessBuckets = []string{"6-8", "9-11", "12-14", "15-17", "18-20", "21+"}

// UserStats хранит игровую статистику пользователя.
type UserStats struct {
	UserUID           string         `json:"-"`
	GamesPlayed       int            `json:"gamesPlayed"`
	GamesWon          int            `json:"gamesWon"`
	TotalGuesses      int            `json:"totalGuesses"`
	BestScore         *int           `json:"bestScore"`
	CurrentStreak     int            `json:"currentStreak"`
	LongestStreak     int            `json:"longestStreak"`
	AverageGuesses    float64        `json:"averageGuesses"`
	LastPlayed        *time.Time     `json:"lastPlayed,omitempty"`
	Achievements      []string       `json:"achievements"`
	GuessDistribution map[string]int `json:"guessDistribution"`
}

// NewUserStats возвращает статистику нового пользователя.
func NewUserStats(userUID string) UserStats {
	dist := make(map[string]int, len(GuessBuckets))
	for _, b := range GuessBuckets {
		dist[b] = 0
	}
	return UserStats{
		UserUID:           userUID,
		Achievements:      []string{},
		GuessDistribution: dist,
	}
}

// EmptyUserStats используется, когда запись статистики ещё не создана.
func EmptyUserStats() UserStats {
	return UserStats{
		Achievements:      []string{},
		GuessDistribution: map[string]int{},
	}
}

// Profile — данные страницы профиля.
type Profile struct {
	User  PublicUser `json:"user"`
	Stats UserStats  `json:"stats"`
}
