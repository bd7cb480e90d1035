package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentmart/server/internal/helpers"
	"github.com/rentmart/server/internal/models"
	"github.com/rentmart/server/internal/services"
)

func currentClaims(c *gin.Context) *helpers.EnhancedClaims {
	userClaims, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := userClaims.(*helpers.EnhancedClaims)
	if !ok {
		return nil
	}
	return claims
}

func statusFor(err error) int {
	switch services.Code(err) {
	case services.CodeValidation, services.CodeSignature:
		return http.StatusBadRequest
	case services.CodeNotFound:
		return http.StatusNotFound
	case services.CodeForbidden:
		return http.StatusForbidden
	case services.CodeConflict:
		return http.StatusConflict
	case services.CodeGateway:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), models.ErrorResponse(err.Error()))
}
