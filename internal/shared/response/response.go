package response

import (
	"go-employee/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

type ErrorBody struct {
	Error   string                `json:"error"`
	Code    string                `json:"code,omitempty"`
	Details string                `json:"details,omitempty"`
	Fields  []apperror.FieldError `json:"fields,omitempty"`
}

type MessageBody struct {
	Message string `json:"message"`
}

// Success writes data as the bare JSON body.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageBody{Message: message})
}

// AbortWithError writes the resolved error and stops the handler chain.
func AbortWithError(c *gin.Context, httpErr apperror.HTTPError) {
	c.AbortWithStatusJSON(httpErr.Status, ErrorBody{
		Error:   httpErr.Message,
		Code:    httpErr.Code,
		Details: httpErr.Details,
		Fields:  httpErr.Fields,
	})
}
