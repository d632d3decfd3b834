// Package apperr описывает классы ошибок приложения и их соответствие HTTP-статусам.
//
// Сервисный слой возвращает *Error с нужным Kind, а HTTP-слой по Kind выбирает
// код ответа и текст, который можно показать клиенту.
package apperr

import (
	"errors"
	"net/http"
)

// Kind — класс ошибки.
type Kind int

const (
	// Internal — непредвиденная ошибка, клиенту отдаётся 500 без подробностей.
	Internal Kind = iota
	// InvalidArgument — некорректные входные данные (400).
	InvalidArgument
	// Unauthenticated — нет токена, токен невалиден или неверные учётные данные (401).
	Unauthenticated
	// Conflict — нарушение уникальности (409).
	Conflict
	// NotFound — запись не найдена или принадлежит другому пользователю (404).
	NotFound
	// UpstreamUnavailable — внешний источник данных недоступен (502).
	UpstreamUnavailable
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case Unauthenticated:
		return "unauthenticated"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "internal"
	}
}

// HTTPStatus возвращает HTTP-статус для класса ошибки.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidArgument:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case UpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error — ошибка с классом и сообщением для клиента.
// Err хранит исходную причину и в ответ не попадает.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New создаёт ошибку заданного класса.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap создаёт ошибку заданного класса с причиной.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по классу и сообщению, что позволяет использовать
// заранее объявленные ошибки вместе с errors.Is даже после Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// KindOf возвращает класс первой *Error в цепочке, иначе Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// As достаёт *Error из цепочки.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
