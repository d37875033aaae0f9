package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ecommerce-api/internal/auth"
	"github.com/MikeMC777/ecommerce-api/internal/httpx"
)

// @Summary Register
// @Tags    auth
// @Param   body body auth.RegisterRequest true "new user"
// @Success 201
// @Router  /auth/register [post]
func registerHandler(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.RegisterRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		u, toks, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"userCreated": u, "tokens": toks})
	}
}

func loginHandler(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		u, toks, err := svc.Login(c.Request.Context(), req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u, "tokens": toks})
	}
}

func logoutHandler(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LogoutRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		u, err := svc.Logout(c.Request.Context(), req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u})
	}
}

func refreshHandler(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.RefreshRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		toks, err := svc.Refresh(c.Request.Context(), req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"refresh": toks})
	}
}
