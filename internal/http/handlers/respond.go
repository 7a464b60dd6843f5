package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every non-2xx response uses the same envelope: {"success": false, "message": ...}.
// Clients key off the message strings, so they are part of the contract.

func RespondFail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondFail(ctx, http.StatusBadRequest, message)
}

func RespondUnAuthorized(ctx *gin.Context, message string) {
	RespondFail(ctx, http.StatusUnauthorized, message)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondFail(ctx, http.StatusForbidden, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondFail(ctx, http.StatusInternalServerError, message)
}

// RespondValidation carries per-field messages alongside the envelope.
func RespondValidation(ctx *gin.Context, message string, fields map[string]string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
		"errors":  fields,
	})
}
