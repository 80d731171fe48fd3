package domain

// User представляет доменную модель пользователя. Поле Friends подтягивается
// при чтении из таблицы friendships, на записи пользователя оно не хранится.
type User struct {
	ID       int64   `json:"id" db:"user_id"`
	Email    string  `json:"email" db:"email" validate:"required,email"`
	Login    string  `json:"login" db:"login" validate:"required,nowhitespace"`
	Name     string  `json:"name" db:"name"`
	Birthday Date    `json:"birthday" db:"birthday" validate:"required,notfuture"`
	Friends  []int64 `json:"friends" db:"-"`
}
