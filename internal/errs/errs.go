// Package errs содержит сигнальные ошибки, общие для слоёв хранилища, сервисов и HTTP.
// HTTP-обработчики сопоставляют их с кодами ответа через errors.Is.
package errs

import "errors"

var (
	// ErrValidation тело запроса не прошло валидацию.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated токен отсутствует, повреждён или подпись неверна.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTokenExpired срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
	// ErrForbidden токен валиден, но пользователь не найден или деактивирован.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials неверное имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyExists нарушение уникальности (например, занятое имя пользователя).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidIdentifier идентификатор записи имеет неверный формат.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrNotFound запись с таким идентификатором отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrNoFieldsProvided после удаления защищённых полей обновлять нечего.
	ErrNoFieldsProvided = errors.New("no valid fields provided for update")
	// ErrInvalidQuery некорректные параметры пагинации, сортировки или фильтров.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrVersionConflict запись изменилась между чтением и записью.
	ErrVersionConflict = errors.New("version conflict")

	// ErrStorage сбой хранилища; детали не раскрываются клиенту.
	ErrStorage = errors.New("storage error")
)
