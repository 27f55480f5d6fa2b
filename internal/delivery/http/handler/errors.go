package handler

import (
	"net/http"

	"github.com/user/skillgen-service/internal/usecase"
)

// StatusForKind maps a failure kind to the HTTP status returned to clients.
func StatusForKind(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindUnauthorized:
		return http.StatusUnauthorized
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindInvalidInput:
		return http.StatusBadRequest
	case usecase.KindRunInProgress:
		return http.StatusConflict
	case usecase.KindCrawlFailed, usecase.KindExtractionFailed, usecase.KindMalformedOutput:
		return http.StatusBadGateway
	case usecase.KindNoContent, usecase.KindNoSkillsIdentified:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
