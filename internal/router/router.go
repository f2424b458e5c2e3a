package router

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/fastygo/habits/api/handler"
)

type Handlers struct {
	Dashboard *apiHandler.DashboardHandler
	Plan      *apiHandler.PlanHandler
	Activity  *apiHandler.ActivityHandler
	Profile   *apiHandler.ProfileHandler
	Health    *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

type Options struct {
	EnableMetrics bool
	EnablePprof   bool
}

// New builds the route table. Protected routes run through the middleware
// chain in the order given, outermost first.
func New(handlers Handlers, opts Options, middlewares ...Middleware) *router.Router {
	r := router.New()

	protect := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] != nil {
				h = middlewares[i](h)
			}
		}
		return h
	}

	r.GET("/health", handlers.Health.Check)
	if opts.EnableMetrics {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	}
	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	api := r.Group("/api/v1")

	api.GET("/dashboard", protect(handlers.Dashboard.GetDashboard))
	api.GET("/dashboard/activities/{id}/analytics", protect(handlers.Dashboard.GetActivityAnalytics))
	api.PUT("/dashboard/activities/{id}/status", protect(handlers.Dashboard.UpdateActivityStatus))

	api.GET("/plans", protect(handlers.Plan.GetPlan))
	api.PUT("/plans", protect(handlers.Plan.UpdatePlan))

	api.GET("/activities", protect(handlers.Activity.ListActivities))
	api.POST("/activities", protect(handlers.Activity.CreateActivity))
	api.GET("/activities/{id}", protect(handlers.Activity.GetActivity))
	api.PUT("/activities/{id}", protect(handlers.Activity.UpdateActivity))
	api.POST("/activities/{id}/archive", protect(handlers.Activity.ArchiveActivity))
	api.POST("/activities/{id}/restore", protect(handlers.Activity.RestoreActivity))

	api.GET("/profile", protect(handlers.Profile.GetProfile))
	api.PUT("/profile", protect(handlers.Profile.UpdateProfile))

	return r
}
