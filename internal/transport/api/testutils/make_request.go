// Package testutils помощники для тестов HTTP-обработчиков.
package testutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
)

type RequestOptions struct {
	headers map[string]string
}

type RequestArgs struct {
	Router http.Handler
	Method string
	URL    string
	Body   io.Reader
}

// MakeRequest выполняет запрос к роутеру без сети и возвращает ответ рекордера. Тело ответа нужно закрыть.
func MakeRequest(args RequestArgs, opts ...func(*RequestOptions)) *http.Response {
	options := RequestOptions{
		headers: map[string]string{"Content-Type": "application/json"},
	}
	for _, opt := range opts {
		opt(&options)
	}

	request := httptest.NewRequest(args.Method, args.URL, args.Body)
	for k, v := range options.headers {
		request.Header.Set(k, v)
	}

	recorder := httptest.NewRecorder()
	args.Router.ServeHTTP(recorder, request)
	return recorder.Result()
}

func WithHeader(name, value string) func(*RequestOptions) {
	return func(o *RequestOptions) {
		o.headers[name] = value
	}
}

func WithBearer(token string) func(*RequestOptions) {
	return WithHeader("Authorization", "Bearer "+token)
}

// DecodeJSON читает тело ответа в dst и закрывает его.
func DecodeJSON(res *http.Response, dst any) error {
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}
