package middleware

import (
	"github.com/valyala/fasthttp"
)

// CORS applies cross-origin headers for the browser frontend. An empty
// allow-list permits any origin.
func CORS(allowedOrigins []string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))

			switch {
			case origin == "":
				// Non-browser client, nothing to do.
			case len(allowed) == 0:
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowOrigin, "*")
			default:
				if _, ok := allowed[origin]; ok {
					ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
					ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowCredentials, "true")
				}
			}

			if origin != "" {
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowHeaders, "Authorization, Content-Type, X-Request-ID")
			}

			if string(ctx.Method()) == fasthttp.MethodOptions {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}

			next(ctx)
		}
	}
}
