package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/constants"
)

// LimitBody caps request bodies at n bytes. It must run before anything that
// parses the form, so an oversized multipart body is cut off in memory
// instead of being spooled to temporary files.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = &cappedBody{
				ReadCloser: http.MaxBytesReader(c.Writer, c.Request.Body, n),
				c:          c,
			}
		}
		c.Next()
	}
}

// BodyTooLarge reports whether reading the body hit the LimitBody cap.
func BodyTooLarge(c *gin.Context) bool {
	return c.GetBool(constants.ContextKeyTooLarge)
}

type cappedBody struct {
	io.ReadCloser
	c *gin.Context
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		b.c.Set(constants.ContextKeyTooLarge, true)
	}
	return n, err
}
