package domain

import "errors"

var (
	// ErrTransportFailure - сетевая ошибка, ошибка прокси или неуспешный HTTP статус
	ErrTransportFailure = errors.New("transport failure")
	// ErrMalformedResponse - тело ответа не является JSON-объектом
	ErrMalformedResponse = errors.New("malformed response")
)
