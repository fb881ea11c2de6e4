package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetRequestID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "id", "Request")
}

func GetDonorID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "donor_id", "Donor")
}

func parseIDParam(ctx *gin.Context, name string, label string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New(label + " ID not found")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + label + " ID")
	}

	return uint(id), nil
}
