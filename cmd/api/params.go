package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
)

// pathID returns the named path parameter when it is a valid UUID.
func pathID(c *gin.Context, name string) (string, error) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Invalid(name + " must be a valid uuid")
	}
	return id, nil
}
