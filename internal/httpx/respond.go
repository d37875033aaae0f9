package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
)

type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ListEnvelope struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Data        any    `json:"data"`
	CurrentPage int    `json:"currentPage"`
	TotalData   int    `json:"totalData"`
	TotalPage   int    `json:"totalPage"`
}

type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func JSON(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, Envelope{Status: status, Message: msg, Data: data})
}

func List(c *gin.Context, msg string, data any, p Page, total int) {
	c.JSON(http.StatusOK, ListEnvelope{
		Status:      http.StatusOK,
		Message:     msg,
		Data:        data,
		CurrentPage: p.Page,
		TotalData:   total,
		TotalPage:   p.TotalPages(total),
	})
}

// Error writes err as {"status","message"}. Internal causes are logged, not sent.
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && !apperr.Is(err, apperr.KindTimeout) {
		rid, _ := c.Get("rid")
		log.Printf("[http] rid=%v %s %s: %v", rid, c.Request.Method, c.Request.URL.Path, err)
	}
	if apperr.Retryable(err) {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, ErrorBody{Status: status, Message: apperr.Message(err)})
}

func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Bind decodes and validates the JSON body into dst.
func Bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return apperr.Invalid(fe.Field() + " failed on the '" + fe.Tag() + "' rule")
		}
		return apperr.Invalid("invalid json body")
	}
	return nil
}
