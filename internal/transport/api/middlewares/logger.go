package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger пишет в лог каждый запрос. Приватные ошибки gin попадают в лог, но не в ответ.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithField("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}
		if operator := CurrentOperator(c); operator != "" {
			fields["operator"] = operator
		}

		reqLog := entry.WithFields(fields)
		if private := c.Errors.ByType(gin.ErrorTypePrivate); len(private) > 0 {
			reqLog = reqLog.WithField("errors", private.String())
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			reqLog.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			reqLog.Warn("request rejected")
		default:
			reqLog.Info("request")
		}
	}
}
