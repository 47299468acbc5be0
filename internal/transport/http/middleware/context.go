package middleware

import (
	"context"

	"hrforms/internal/requestctx"
)

func GetUser(ctx context.Context) (requestctx.User, bool) {
	return requestctx.GetUser(ctx)
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
