package httpserver

import (
	"net/http"
	"sort"
	"strings"
)

// Routes groups HTTP handlers.
type Routes struct {
	Root              http.HandlerFunc
	Health            http.HandlerFunc
	Rates             http.HandlerFunc
	KWToMoney         http.HandlerFunc
	MoneyToKW         http.HandlerFunc
	SaveCalculation   http.Handler
	ListCalculations  http.HandlerFunc
	ClearCalculations http.HandlerFunc
	CreateStatus      http.HandlerFunc
	ListStatus        http.HandlerFunc
	Feed              http.Handler
}

// NewRouter registers service endpoints and wraps them with middlewares,
// outermost first.
func NewRouter(routes Routes, middlewares ...func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	if routes.Root != nil {
		mux.Handle("/api/{$}", methods(map[string]http.HandlerFunc{http.MethodGet: routes.Root}))
	}
	if routes.Health != nil {
		mux.Handle("/health", methods(map[string]http.HandlerFunc{http.MethodGet: routes.Health}))
	}
	if routes.Rates != nil {
		mux.Handle("/api/rates", methods(map[string]http.HandlerFunc{http.MethodGet: routes.Rates}))
	}
	if routes.KWToMoney != nil {
		mux.Handle("/api/calculate/kw-to-money", methods(map[string]http.HandlerFunc{http.MethodPost: routes.KWToMoney}))
	}
	if routes.MoneyToKW != nil {
		mux.Handle("/api/calculate/money-to-kw", methods(map[string]http.HandlerFunc{http.MethodPost: routes.MoneyToKW}))
	}
	if routes.SaveCalculation != nil {
		mux.Handle("/api/calculate", methods(map[string]http.HandlerFunc{http.MethodPost: routes.SaveCalculation.ServeHTTP}))
	}
	calculations := map[string]http.HandlerFunc{}
	if routes.ListCalculations != nil {
		calculations[http.MethodGet] = routes.ListCalculations
	}
	if routes.ClearCalculations != nil {
		calculations[http.MethodDelete] = routes.ClearCalculations
	}
	if len(calculations) > 0 {
		mux.Handle("/api/calculations", methods(calculations))
	}
	status := map[string]http.HandlerFunc{}
	if routes.CreateStatus != nil {
		status[http.MethodPost] = routes.CreateStatus
	}
	if routes.ListStatus != nil {
		status[http.MethodGet] = routes.ListStatus
	}
	if len(status) > 0 {
		mux.Handle("/api/status", methods(status))
	}
	if routes.Feed != nil {
		mux.Handle("/api/ws/calculations", methods(map[string]http.HandlerFunc{http.MethodGet: routes.Feed.ServeHTTP}))
	}

	var handler http.Handler = mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

func methods(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	allowed := make([]string, 0, len(handlers))
	for m := range handlers {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
