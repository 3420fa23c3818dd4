package web

import (
	"errors"
	"net/http"

	"marketing-studio/internal/export"
	"marketing-studio/internal/generation"
	"marketing-studio/internal/marketing"
	"marketing-studio/internal/session"
)

type errorView struct {
	Error  string                     `json:"error"`
	Kind   string                     `json:"kind"`
	Reason generation.BlockReason     `json:"reason,omitempty"`
	Fields map[marketing.Field]string `json:"fields,omitempty"`
}

func classifyError(err error) (int, errorView) {
	var (
		verr *marketing.ValidationError
		busy *session.BusyError
		cfg  *marketing.ConfigError
		cpe  *marketing.ConceptParseError
		se   *generation.ServiceError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorView{Error: verr.Error(), Kind: "validation", Fields: verr.Fields}
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, errorView{Error: err.Error(), Kind: "not_found"}
	case errors.As(err, &busy):
		return http.StatusConflict, errorView{Error: busy.Error(), Kind: "busy"}
	case errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict, errorView{Error: err.Error(), Kind: "superseded"}
	case errors.Is(err, session.ErrNoResult), errors.Is(err, session.ErrEmptyInstruction),
		errors.Is(err, session.ErrOutOfRange), errors.Is(err, session.ErrUnknownField):
		return http.StatusBadRequest, errorView{Error: err.Error(), Kind: "bad_request"}
	case errors.Is(err, export.ErrNotText), errors.Is(err, export.ErrNotPoster),
		errors.Is(err, export.ErrNoImage), errors.Is(err, export.ErrNoResult):
		return http.StatusNotFound, errorView{Error: err.Error(), Kind: "not_found"}
	case errors.As(err, &cfg):
		return http.StatusInternalServerError, errorView{Error: cfg.Error(), Kind: "configuration"}
	case errors.As(err, &cpe):
		return http.StatusBadGateway, errorView{Error: cpe.Error(), Kind: "concept_parse"}
	case errors.As(err, &se):
		return serviceStatus(se.Kind), errorView{Error: se.Error(), Kind: string(se.Kind), Reason: se.Reason}
	default:
		return http.StatusInternalServerError, errorView{Error: err.Error(), Kind: "internal"}
	}
}

func serviceStatus(kind generation.Kind) int {
	switch kind {
	case generation.KindRateLimited, generation.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case generation.KindUnavailable:
		return http.StatusServiceUnavailable
	case generation.KindContentBlocked:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
