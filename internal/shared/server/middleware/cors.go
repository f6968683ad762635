package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSPolicy describes which browser origins may call the API. An origin
// of "*" allows any origin; the header then echoes the caller's origin so
// the response stays cacheable per origin.
type CORSPolicy struct {
	Origins       []string
	Methods       []string
	Headers       []string
	ExposeHeaders []string
	MaxAgeSeconds int
}

// DefaultCORSPolicy covers the upload form and the shop pages.
func DefaultCORSPolicy(origins []string) CORSPolicy {
	return CORSPolicy{
		Origins:       origins,
		Methods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		Headers:       []string{"Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAgeSeconds: 600,
	}
}

// CORS applies DefaultCORSPolicy for the given origins.
func CORS(origins []string) gin.HandlerFunc {
	return DefaultCORSPolicy(origins).Handler()
}

// Handler sets CORS headers for allowed origins and answers preflights.
func (p CORSPolicy) Handler() gin.HandlerFunc {
	allowAny := false
	allowed := make(map[string]struct{}, len(p.Origins))
	for _, o := range p.Origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			allowAny = true
		default:
			allowed[o] = struct{}{}
		}
	}
	methods := strings.Join(p.Methods, ",")
	headers := strings.Join(p.Headers, ", ")
	expose := strings.Join(p.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(p.MaxAgeSeconds)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := allowed[origin]
			if ok || allowAny {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Expose-Headers", expose)
				h.Set("Access-Control-Max-Age", maxAge)
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
