package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/constants"
)

// VerifyCSRF rejects state-changing requests whose csrf_token field does not
// match the session token. It must run after RequireAuth and LimitBody.
func VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		st, _ := CurrentState(c)
		submitted := c.PostForm(constants.CSRFFormField)
		if BodyTooLarge(c) {
			c.HTML(http.StatusRequestEntityTooLarge, "error.html", gin.H{
				"Title":   "Upload too large",
				"Message": "File size exceeds 2 MB limit",
			})
			c.Abort()
			return
		}
		if st.CSRFToken == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(st.CSRFToken)) != 1 {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Title":   "Forbidden",
				"Message": "Your form has expired, please go back and try again",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
