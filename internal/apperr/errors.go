package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indica que o produto, supermercado ou alerta não existe
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indica consulta malformada, preço inválido ou parâmetro fora do domínio
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict indica que o registro foi alterado por outra avaliação
	ErrConflict = errors.New("conflict")
)

// HTTPStatus converte um erro para o código HTTP correspondente
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
