package controllers

import (
	"context"
	"net/http"

	"github.com/stockwise-ai/stockwise-backend/api/responses"
	"github.com/stockwise-ai/stockwise-backend/api/validators"
	pkgerrors "github.com/stockwise-ai/stockwise-backend/pkg/errors"
	"github.com/stockwise-ai/stockwise-backend/pkg/logger"
)

// QueryService answers one inventory question.
type QueryService interface {
	Ask(ctx context.Context, query string) (any, error)
}

type assistantQueryRequest struct {
	Query string `json:"query" validate:"required"`
}

// AssistantQuery handles POST /api/v1/assistant/query. The response
// body is one of the four published answer shapes, unwrapped.
func AssistantQuery(svc QueryService, maxQueryLen int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req assistantQueryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		query, err := validators.SanitizeQuery(req.Query, maxQueryLen)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if query == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing query"))
			return
		}

		answer, err := svc.Ask(ctx, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "answering query"))
			return
		}
		responses.WriteAnswer(w, answer)
	}
}
