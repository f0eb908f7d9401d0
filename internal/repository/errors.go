package repository

import "errors"

var (
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict: нарушение ограничения уникальности на стороне базы
	ErrConflict = errors.New("нарушение уникальности")
	// ErrInvalidReference: ссылка на несуществующую строку (внешний ключ)
	ErrInvalidReference = errors.New("ссылка на несуществующую запись")

	ErrNoTransaction     = errors.New("транзакция не открыта")
	ErrTransactionActive = errors.New("транзакция уже открыта")
)
