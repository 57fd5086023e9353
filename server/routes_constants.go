package server

// Shell-only patterns; navigation targets live in the routes package
const (
	RouteIndex = "/{$}"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)
