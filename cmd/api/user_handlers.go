package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/httpx"
	"github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/product"
	"github.com/MikeMC777/ecommerce-api/internal/user"
)

const defaultUserPageSize = 5

func createUserHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.CreateUserRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		if err := user.ValidatePassword(req.Password); err != nil {
			httpx.Error(c, err)
			return
		}
		hash, err := user.HashPassword(req.Password)
		if err != nil {
			httpx.Error(c, apperr.Internal(err))
			return
		}
		u := &user.User{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Email:        strings.ToLower(req.Email),
			PasswordHash: hash,
			Role:         req.Role,
		}
		if err := repo.Create(c.Request.Context(), u); err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusCreated, "Create User Success", u)
	}
}

func listUsersHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := httpx.Pagination(c, defaultUserPageSize)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		users, total, err := repo.List(c.Request.Context(), user.Query{
			Role:   c.Query("role"),
			Limit:  p.Size,
			Offset: p.Offset(),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.List(c, "Get All User Success", users, p, total)
	}
}

func getUserHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "userId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		u, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Get User By id Success", u)
	}
}

func getUserByEmailHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := repo.GetByEmail(c.Request.Context(), strings.ToLower(c.Param("email")))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Get User By Email Success", u)
	}
}

func updateUserHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "userId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var req user.UpdateUserRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		u := &user.User{ID: id, Name: req.Name, Email: strings.ToLower(req.Email), Role: req.Role}
		withPassword := req.Password != ""
		if withPassword {
			if err := user.ValidatePassword(req.Password); err != nil {
				httpx.Error(c, err)
				return
			}
			if u.PasswordHash, err = user.HashPassword(req.Password); err != nil {
				httpx.Error(c, apperr.Internal(err))
				return
			}
		}
		if err := repo.Update(c.Request.Context(), u, withPassword); err != nil {
			httpx.Error(c, err)
			return
		}
		updated, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Update User By id Success", updated)
	}
}

func deleteUserHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "userId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		ok, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if !ok {
			httpx.Error(c, user.ErrNotFound)
			return
		}
		httpx.JSON(c, http.StatusOK, "Delete User By id Success", nil)
	}
}

func userProductsHandler(users user.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "userId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		p, err := httpx.Pagination(c, 10)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if _, err := users.GetByID(c.Request.Context(), id); err != nil {
			httpx.Error(c, err)
			return
		}
		list, total, err := products.List(c.Request.Context(), product.Query{
			UserID:   id,
			PriceMax: product.NoPriceLimit,
			Limit:    p.Size,
			Offset:   p.Offset(),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.List(c, "Get Product By User Success", list, p, total)
	}
}

func userOrdersHandler(users user.Repository, orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "userId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		p, err := httpx.Pagination(c, 10)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if _, err := users.GetByID(c.Request.Context(), id); err != nil {
			httpx.Error(c, err)
			return
		}
		list, total, err := orders.List(c.Request.Context(), order.Query{
			UserID: id,
			Limit:  p.Size,
			Offset: p.Offset(),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.List(c, "Get Order By User Success", list, p, total)
	}
}
