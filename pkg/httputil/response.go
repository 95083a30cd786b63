package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data"`
	Errors  []errors.FieldError `json:"errors,omitempty"`
}

// Page is the data of a paginated list response.
type Page struct {
	Results  interface{} `json:"results"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string, fields ...errors.FieldError) *Response {
	return &Response{
		Status:  "error",
		Message: message,
		Errors:  fields,
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, NewSuccessResponse(data))
}

// RespondWithError sends an error response. Errors that are not an AppError are
// logged and reported as internal without detail.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	c.Error(err)
	c.AbortWithStatusJSON(status, NewErrorResponse(appErr.Message, appErr.Fields...))
}
