package middleware

import (
	"bytes"

	"github.com/gin-gonic/gin"
)

// responseWriter keeps at most limit bytes of the body for logging.
type responseWriter struct {
	gin.ResponseWriter
	body  *bytes.Buffer
	limit int
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if room := rw.limit - rw.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rw.body.Write(b[:room])
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) WriteString(s string) (int, error) {
	return rw.Write([]byte(s))
}
