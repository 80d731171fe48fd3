package domain

// Genre — справочная запись жанра. Набор жанров фиксирован и загружается
// из справочной таблицы, ядро сервиса их не создает и не изменяет.
type Genre struct {
	ID   int64  `json:"id" db:"genre_id"`
	Name string `json:"name" db:"name"`
}

// Mpa — справочная запись возрастного рейтинга MPA.
type Mpa struct {
	ID   int64  `json:"id" db:"mpa_id"`
	Name string `json:"name" db:"name"`
}
