package httpapi

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var openAPISpec []byte

const swaggerPage = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>Roster Manager API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({ url: '/openapi.yaml', dom_id: '#swagger-ui', deepLinking: true });
    </script>
  </body>
</html>`

func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	h.writeDocument(w, r, "httpapi.Handler.OpenAPI", "application/yaml; charset=utf-8", openAPISpec)
}

func (h *Handler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	h.writeDocument(w, r, "httpapi.Handler.SwaggerUI", "text/html; charset=utf-8", []byte(swaggerPage))
}

func (h *Handler) writeDocument(w http.ResponseWriter, r *http.Request, spanName, contentType string, body []byte) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(ctx, "write api document failed", "path", r.URL.Path, "error", err)
	}
}
