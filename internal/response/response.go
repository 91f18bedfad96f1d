// Package response writes the JSON envelope shared by every endpoint:
//
//	{"success": bool, "message": string, "code"?: string, "data"?: any, "meta"?: any, "access_token"?: string}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

type Envelope struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	Code        string      `json:"code,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	Meta        *utils.Meta `json:"meta,omitempty"`
	AccessToken string      `json:"access_token,omitempty"`
}

func OK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func Paged(c *gin.Context, message string, data interface{}, meta *utils.Meta) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Meta: meta})
}

func Token(c *gin.Context, message, token string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, AccessToken: token})
}

// Error aborts the request with the envelope for err. Internal errors are
// logged with their cause and answered with a generic message.
func Error(c *gin.Context, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal {
		if l, ok := c.Get(LoggerKey); ok {
			if logger, ok := l.(*zap.Logger); ok {
				logger.Error("request failed", zap.Error(err))
			}
		}
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(ae.Status(), Envelope{Success: false, Message: ae.Message, Code: ae.Code})
}

// LoggerKey is the gin context key holding the request scoped logger.
const LoggerKey = "logger"
