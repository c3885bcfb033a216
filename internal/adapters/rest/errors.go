package rest

import (
	"errors"
	"net/http"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
)

const (
	msgNoToken       = "Not authorized, no token"
	msgNotAuthorized = "Not authorized"
	msgNotFound      = "Property not found"
	msgInternal      = "Internal server error"
)

type errorResponse struct {
	target  error
	status  int
	message string
}

// errorResponses - единственное место, где вид ошибки превращается в HTTP-ответ.
// ValidationError обрабатывается отдельно: ее текст безопасно отдавать клиенту.
var errorResponses = []errorResponse{
	{target: domain.ErrUnauthenticated, status: http.StatusUnauthorized, message: msgNoToken},
	{target: domain.ErrNotOwner, status: http.StatusForbidden, message: msgNotAuthorized},
	{target: domain.ErrPropertyNotFound, status: http.StatusNotFound, message: msgNotFound},
}

// writeDomainError: подробности ошибки остаются в логе, клиент получает только безопасное сообщение
func writeDomainError(w http.ResponseWriter, err error, logger port.LoggerPort) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		logger.Warn("Request rejected", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, ve.Error())
		return
	}

	for _, resp := range errorResponses {
		if errors.Is(err, resp.target) {
			logger.Warn("Request rejected", port.Fields{"error": err.Error(), "status_code": resp.status})
			WriteJSONError(w, resp.status, resp.message)
			return
		}
	}

	logger.Error("Request failed", err, nil)
	WriteJSONError(w, http.StatusInternalServerError, msgInternal)
}
