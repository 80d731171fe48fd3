package domain

import "time"

// EarliestReleaseDate — день первого публичного киносеанса братьев Люмьер.
// Фильмы с более ранней датой релиза не принимаются.
var EarliestReleaseDate = NewDate(1895, time.December, 28)

// Film представляет доменную модель фильма. Поля Genres и Likes не хранятся
// на самой записи фильма: они подтягиваются при чтении (см. FilmService).
type Film struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"max=200"`
	ReleaseDate Date    `json:"releaseDate" validate:"required,releasedate"`
	Duration    int     `json:"duration" validate:"required,gt=0"`
	Mpa         *Mpa    `json:"mpa" validate:"required"`
	Genres      []Genre `json:"genres"`
	Likes       []int64 `json:"likes"`
}

// MpaID возвращает id рейтинга MPA или 0, если рейтинг не указан.
func (f *Film) MpaID() int64 {
	if f.Mpa == nil {
		return 0
	}
	return f.Mpa.ID
}

// GenreIDs возвращает id жанров фильма в порядке их указания,
// дубликаты схлопываются.
func (f *Film) GenreIDs() []int64 {
	if len(f.Genres) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(f.Genres))
	ids := make([]int64, 0, len(f.Genres))
	for _, g := range f.Genres {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		seen[g.ID] = struct{}{}
		ids = append(ids, g.ID)
	}
	return ids
}
