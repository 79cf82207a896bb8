package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/schemas"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error interface{} `json:"error"`
}

// JSON writes v with the given status code.
func JSON(ctx *gin.Context, status int, v interface{}) {
	ctx.JSON(status, v)
}

// Error writes {"error": message}.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, ErrorResponse{Error: message})
}

// ValidationFailed writes {"error": [{"field", "message"}...]} with status 400.
func ValidationFailed(ctx *gin.Context, verr *schemas.ValidationError) {
	ctx.JSON(400, ErrorResponse{Error: verr.Fields})
}

// Message writes {"message": message}.
func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}
