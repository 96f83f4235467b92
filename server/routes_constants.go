package server

// Route path constants
const (
	// Auth
	RouteSignIn  = "/auth/sign-in"
	RouteSignOut = "/auth/sign-out"

	// Products
	RouteRoot          = "/"
	RouteProducts      = "/products/get"
	RouteProductCreate = "/products/{category}/create"
	RouteProduct       = "/products/{category}/{id}"

	// API
	RouteAPISession = "/api/session"

	// Operations
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"

	// Static assets
	RouteStaticCSS = "/css/{file}"
)
