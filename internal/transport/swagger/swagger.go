package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func Handler() http.Handler {
	// Serves the OpenAPI spec exposed at the root.
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}
