package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/log"
	"go.uber.org/zap"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Kind    apperr.Kind `json:"kind"`
	IDs     []string    `json:"ids,omitempty"`
}

func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func OKWithMeta(c *gin.Context, message string, data, meta any) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data, Meta: meta})
}

// Abort stops the chain with a bare error body. Used by middleware.
func Abort(c *gin.Context, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), ErrorResponse{Success: false, Message: message, Kind: kind})
}

// Fail writes err as an error response. Unclassified errors are logged and
// reported as internal without leaking their text.
func Fail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		err = apperr.Validation("invalid request: %s", verrs.Error())
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.L.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Message: "internal server error",
			Kind:    apperr.KindInternal,
		})
		return
	}

	c.JSON(apperr.HTTPStatus(appErr.Kind), ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Kind:    appErr.Kind,
		IDs:     appErr.IDs,
	})
}

// Wrap adapts an error-returning handler to gin.
func Wrap(h func(*gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {
			if c.Writer.Written() {
				return
			}
			Fail(c, err)
		}
	}
}

// bindError turns a gin binding failure into a validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return err
	}
	return apperr.Validation("invalid request: %v", err)
}
