package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/form"
	"github.com/ekamauln/livo-next/internal/middleware"
	"github.com/ekamauln/livo-next/internal/upstream"
)

// Response is the envelope of every JSON response.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(page, pageSize, total int) *Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return &Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// Codes that are not derived from an HTTP status.
const (
	CodeWarning          = 20001
	CodeValidation       = 42200
	CodeExportInProgress = 40901
	CodeUpstream         = 50200
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

func Accepted(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusAccepted, Response{Code: 0, Message: message, Data: data})
}

// Warning is a non-error outcome the user should be told about, e.g. an export
// that matched no records.
func Warning(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeWarning, Message: message, Data: data})
}

// Error writes code with HTTP status code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, code int, message string) {
	if code == 0 {
		code = 40900
	}
	Error(c, code, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ValidationFailed returns field errors and the optional banner.
func ValidationFailed(c *gin.Context, errs *form.Errors) {
	message := errs.Banner
	if message == "" {
		message = "Please correct the highlighted fields"
	}
	c.JSON(http.StatusUnprocessableEntity, Response{Code: CodeValidation, Message: message, Data: errs})
}

// UpstreamError maps a failed upstream call to a response. The message is the
// user-facing text for the upstream status; the error itself is attached to the
// context for the request log and never sent to the client.
func UpstreamError(c *gin.Context, err error) {
	_ = c.Error(err)
	message := upstream.UserMessage(err)

	var se *upstream.StatusError
	if errors.As(err, &se) {
		switch {
		case se.Status == 0, se.Status >= 500:
			Error(c, CodeUpstream, message)
		case se.Status == http.StatusUnauthorized:
			Error(c, 40100, message)
		case se.Status >= 400:
			Error(c, se.Status*100, message)
		default:
			// a 2xx response with success=false
			BadRequest(c, message)
		}
		return
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		Error(c, 50400, "Request timed out, please try again")
	case errors.Is(err, upstream.ErrMalformedResponse):
		Error(c, CodeUpstream, message)
	default:
		InternalError(c, upstream.GenericMessage)
	}
}

// RespondError handles errors that may carry validation details or come from
// the upstream API.
func RespondError(c *gin.Context, err error) {
	if fe, ok := form.AsErrors(err); ok {
		ValidationFailed(c, fe)
		return
	}
	UpstreamError(c, err)
}

func GetUserID(c *gin.Context) string {
	return c.GetString(middleware.KeyUserID)
}

// RequestContext carries the caller's token to the upstream API.
func RequestContext(c *gin.Context) context.Context {
	return upstream.WithToken(c.Request.Context(), c.GetString(middleware.KeyToken))
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	for _, key := range []string{"page_size", "limit"} {
		if ps := c.Query(key); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v
			}
			break
		}
	}
	return page, pageSize
}

// idParam parses a positive numeric :id.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
