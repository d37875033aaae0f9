package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/ecommerce-api/internal/category"
	"github.com/MikeMC777/ecommerce-api/internal/httpx"
)

func createCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.CategoryRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		cat := &category.Category{ID: uuid.NewString(), Name: req.Name}
		if err := repo.Create(c.Request.Context(), cat); err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusCreated, "Create Category Success", cat)
	}
}

func listCategoriesHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := httpx.Pagination(c, 10)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		cats, total, err := repo.List(c.Request.Context(), category.Query{
			Name:   c.Query("name"),
			Limit:  p.Size,
			Offset: p.Offset(),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.List(c, "Get Categories Success", cats, p, total)
	}
}

func getCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "categoryId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		cat, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Get Category By Id Success", cat)
	}
}

func updateCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "categoryId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var req category.CategoryRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		cat := &category.Category{ID: id, Name: req.Name}
		if err := repo.Update(c.Request.Context(), cat); err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Update Category Success", cat)
	}
}

func deleteCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "categoryId")
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
			httpx.Error(c, category.ErrNotFound)
			return
		}
		httpx.JSON(c, http.StatusOK, "Delete Category Success", nil)
	}
}
