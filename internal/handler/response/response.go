package response

import (
	"net/http"

	"tari-sdk/pkg/errno"

	"github.com/gin-gonic/gin"
)

// Response defines the standard JSON structure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// Success returns a success response with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{} // Return empty object instead of null
	}
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Error returns an error response. Business errors keep HTTP 200 and carry
// the errno code; unknown errors map to 500.
func Error(c *gin.Context, err error) {
	code, msg := errno.Decode(err)
	status := http.StatusOK
	if code == errno.InternalServerError.Code {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{
		Code:    code,
		Message: msg,
		Data:    gin.H{},
	})
}
