package httperr

import (
	"github.com/gin-gonic/gin"
)

// FieldErrors maps a request field to the messages explaining why it was rejected.
type FieldErrors map[string][]string

type Body struct {
	Message string `json:"message"`
}

type Response struct {
	Status int         `json:"-"`
	Error  Body        `json:"error"`
	Detail FieldErrors `json:"detail,omitempty"`
}

func NewResponse(status int, msg string) Response {
	return Response{Status: status, Error: Body{Message: msg}}
}

// AbortWithError writes msg to the client and keeps err on the context for
// the error middleware to log.
func AbortWithError(c *gin.Context, status int, err error, msg string) {
	abort(c, err, NewResponse(status, msg))
}

func AbortWithFieldErrors(c *gin.Context, status int, err error, msg string, fields FieldErrors) {
	resp := NewResponse(status, msg)
	resp.Detail = fields
	abort(c, err, resp)
}

func abort(c *gin.Context, err error, resp Response) {
	if err == nil {
		panic("httperr: abort without an error")
	}
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(resp.Status, resp)
}
