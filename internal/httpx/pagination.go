package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
)

var ErrInvalidQuery = apperr.Invalid("Invalid query Request")

type Page struct {
	Page int
	Size int
}

func (p Page) Offset() int { return (p.Page - 1) * p.Size }

func (p Page) TotalPages(total int) int {
	if p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// Pagination reads page and size. Absent values take the defaults; present
// values must be positive integers.
func Pagination(c *gin.Context, defaultSize int) (Page, error) {
	page, err := QueryInt(c, "page", 1)
	if err != nil {
		return Page{}, err
	}
	size, err := QueryInt(c, "size", defaultSize)
	if err != nil {
		return Page{}, err
	}
	if page < 1 || size < 1 {
		return Page{}, ErrInvalidQuery
	}
	return Page{Page: page, Size: size}, nil
}

// QueryInt returns def when key is absent and ErrInvalidQuery when it is
// not an integer.
func QueryInt(c *gin.Context, key string, def int) (int, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ErrInvalidQuery
	}
	return n, nil
}
