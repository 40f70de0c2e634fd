package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/idtoken"
)

const (
	authorizationHeaderKey  = "Authorization"
	authorizationTypeBearer = "Bearer"
	authorizationPayloadKey = "authPayload"
	requestIDHeaderKey      = "X-Request-ID"
	requestIDKey            = "requestID"
)

// IDTokenValidator is satisfied by *idtoken.Validator.
type IDTokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// eventAuthMiddleware accepts only Google-signed OIDC tokens issued for audience,
// optionally restricted to a single invoker service account.
func eventAuthMiddleware(validator IDTokenValidator, audience string, invokerEmail string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorizationHeader := ctx.GetHeader(authorizationHeaderKey)
		if authorizationHeader == "" {
			err := errors.New("authorization header is not provided")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		fields := strings.Fields(authorizationHeader)
		if len(fields) != 2 {
			err := errors.New("invalid authorization header format")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		if fields[0] != authorizationTypeBearer {
			err := errors.New("unsupported authorization header type")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		payload, err := validator.Validate(ctx, fields[1], audience)
		if err != nil {
			log.Warn().Err(err).Msg("failed to validate event id token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		if invokerEmail != "" {
			email, _ := payload.Claims["email"].(string)
			if email != invokerEmail {
				err := fmt.Errorf("invoker %q is not allowed", email)
				ctx.AbortWithStatusJSON(http.StatusForbidden, errorResponse(err))
				return
			}
		}

		ctx.Set(authorizationPayloadKey, payload)
		ctx.Next()
	}
}

// authInvoker returns the email claim of the token accepted by eventAuthMiddleware, if any.
func authInvoker(ctx *gin.Context) string {
	value, exists := ctx.Get(authorizationPayloadKey)
	if !exists {
		return ""
	}
	payload, ok := value.(*idtoken.Payload)
	if !ok {
		return ""
	}
	email, _ := payload.Claims["email"].(string)
	return email
}

// requestLogger tags every request with an ID and logs its outcome.
func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(requestIDHeaderKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(requestIDKey, requestID)
		ctx.Header(requestIDHeaderKey, requestID)

		ctx.Next()

		event := log.Info()
		if ctx.Writer.Status() >= 500 {
			event = log.Error()
		}
		if invoker := authInvoker(ctx); invoker != "" {
			event = event.Str("invoker", invoker)
		}
		event.
			Str("request_id", requestID).
			Str("method", ctx.Request.Method).
			Str("path", ctx.FullPath()).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}
