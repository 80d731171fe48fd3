package service

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"filmorate-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator проверяет доменные модели по полевым правилам. Все применимые
// правила прогоняются целиком: нарушения накапливаются в порядке объявления
// полей, валидация не останавливается на первом.
type Validator struct {
	validate *validator.Validate
}

// NewValidator создает валидатор с зарегистрированными доменными правилами:
// releasedate (не раньше 1895-12-28), notfuture (дата не в будущем),
// nowhitespace (без пробельных символов).
func NewValidator() (*Validator, error) {
	v := validator.New()

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(domain.Date); ok {
			return d.Time
		}
		return nil
	}, domain.Date{})

	if err := v.RegisterValidation("releasedate", validReleaseDate); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("notfuture", validNotFuture); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("nowhitespace", validNoWhitespace); err != nil {
		return nil, err
	}
	return &Validator{validate: v}, nil
}

func validReleaseDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.Before(domain.EarliestReleaseDate.Time)
}

func validNotFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	// Сегодняшняя дата допустима, строго будущая — нет.
	return !t.After(domain.Today().Time)
}

func validNoWhitespace(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) == -1
}

// ValidateFilm возвращает nil либо *ValidationError со всеми нарушениями.
func (v *Validator) ValidateFilm(film *domain.Film) error {
	if err := v.validate.Struct(film); err != nil {
		return translate(err, filmMessages)
	}
	return nil
}

// ValidateUser возвращает nil либо *ValidationError со всеми нарушениями.
func (v *Validator) ValidateUser(user *domain.User) error {
	if err := v.validate.Struct(user); err != nil {
		return translate(err, userMessages)
	}
	return nil
}

var filmMessages = map[string]string{
	"Name":        "Название фильма не может быть пустым",
	"Description": "Максимальная длина описания — 200 символов",
	"ReleaseDate": "Дата релиза должна быть указана и не раньше 28 декабря 1895 года",
	"Duration":    "Продолжительность фильма должна быть положительным числом",
	"Mpa":         "Рейтинг MPA должен быть указан",
}

var userMessages = map[string]string{
	"Email":    "Электронная почта должна быть указана и содержать символ @",
	"Login":    "Логин должен быть указан и не содержать пробелы",
	"Birthday": "Дата рождения должна быть указана и не может быть в будущем",
}

func translate(err error, messages map[string]string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	violations := make([]string, 0, len(fieldErrs))
	seen := make(map[string]struct{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.StructField()]
		if !ok {
			msg = fe.Error()
		}
		// Несколько тегов на одном поле дают одно сообщение.
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		violations = append(violations, msg)
	}
	return &ValidationError{Violations: violations}
}
