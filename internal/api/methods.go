package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/kodawari/backend/internal/middleware"
)

// routedMethods are the methods rejected on a path that does not register
// them. CORS preflights are answered by middleware before the rejection runs.
var routedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

// methods maps an HTTP method to its handler chain
type methods map[string][]gin.HandlerFunc

// handle registers the chains for path and answers every other method with
// 405 and an Allow header
func handle(rg gin.IRoutes, path string, m methods) {
	allowed := make([]string, 0, len(m))
	for method, chain := range m {
		rg.Handle(method, path, chain...)
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)

	reject := methodNotAllowed(strings.Join(allowed, ", "))
	for _, method := range routedMethods {
		if _, ok := m[method]; !ok {
			rg.Handle(method, path, reject)
		}
	}
}

func methodNotAllowed(allow string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Allow", allow)
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, middleware.ErrorResponse{
			Error: "method " + c.Request.Method + " not allowed",
		})
	}
}

func chain(pre []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+1)
	out = append(out, pre...)
	return append(out, h)
}
