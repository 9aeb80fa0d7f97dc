package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex     = "/"
	RouteLogin     = "/login"
	RouteLogout    = "/logout"
	RouteCallback  = "/callback"
	RouteDashboard = "/dashboard"

	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)

// RouteClass classifies a request path for the silent-login gate, replacing
// string-prefix checks scattered through the flow. Resolved once per request.
type RouteClass int

const (
	RouteClassOther RouteClass = iota
	// RouteClassCallback: the provider redirects back here; gating it would
	// loop the browser straight back to the provider.
	RouteClassCallback
	// RouteClassManualLogin: lets a user opt out of the silent flow.
	RouteClassManualLogin
)

func ClassifyRoute(path string) RouteClass {
	switch path {
	case RouteCallback:
		return RouteClassCallback
	case RouteLogin:
		return RouteClassManualLogin
	default:
		return RouteClassOther
	}
}
