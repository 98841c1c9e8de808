// Package api assembles the HTTP surface: route table, method dispatch,
// middleware chain, and the uniform JSON envelope contract.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/buildercircle/server/internal/api/handlers"
	"github.com/buildercircle/server/internal/api/middleware"
	"github.com/buildercircle/server/internal/auth"
	"github.com/buildercircle/server/internal/config"
	"github.com/buildercircle/server/internal/domain/admins"
	"github.com/buildercircle/server/internal/domain/blogs"
	"github.com/buildercircle/server/internal/domain/contact"
	"github.com/buildercircle/server/internal/domain/creators"
	"github.com/buildercircle/server/internal/domain/events"
	"github.com/buildercircle/server/internal/domain/newsletter"
	"github.com/buildercircle/server/internal/domain/projects"
	"github.com/buildercircle/server/internal/domain/resources"
	"github.com/buildercircle/server/internal/domain/showcase"
)

// Deps carries the wired services the router dispatches to.
type Deps struct {
	Config config.Config
	Logger zerolog.Logger
	Tokens *auth.Manager
	Pinger handlers.Pinger

	Admins     *admins.Service
	Events     *events.Service
	Creators   *creators.Service
	Projects   *projects.Service
	Resources  *resources.Service
	Blogs      *blogs.Service
	Showcase   *showcase.Service
	Contact    *contact.Service
	Newsletter *newsletter.Service
}

// NewRouter builds the full handler chain. Middleware order: correlation,
// request logging, metrics, security headers, CORS, rate limiting, then
// the route table.
func NewRouter(d Deps) http.Handler {
	env := d.Config.Environment

	adminAuth := handlers.NewAdminAuthHandler(d.Admins, env)
	eventsH := handlers.NewEventsHandler(d.Events, env)
	creatorsH := handlers.NewCreatorsHandler(d.Creators, env)
	projectsH := handlers.NewProjectsHandler(d.Projects, env)
	resourcesH := handlers.NewResourcesHandler(d.Resources, env)
	blogsH := handlers.NewBlogsHandler(d.Blogs, env)
	showcaseH := handlers.NewShowcaseHandler(d.Showcase, env)
	contactH := handlers.NewContactHandler(d.Contact, env)
	newsletterH := handlers.NewNewsletterHandler(d.Newsletter, env)

	requireAdmin := middleware.RequireAdmin(d.Tokens, d.Admins, env)
	optionalAdmin := middleware.OptionalAdmin(d.Tokens)
	mutatorRole := middleware.RequireRole(env, admins.RoleAdmin, admins.RoleSuperadmin)
	superadminOnly := middleware.RequireRole(env, admins.RoleSuperadmin)

	limiter := middleware.NewRateLimiter(d.Config.RateLimit, env)
	loginTier := limiter.Limit(middleware.TierLogin)
	submitTier := limiter.Limit(middleware.TierSubmit)
	downloadTier := limiter.Limit(middleware.TierDownload)

	adminOnly := func(h http.HandlerFunc) http.Handler {
		return requireAdmin(mutatorRole(h))
	}

	mux := http.NewServeMux()

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(d.Pinger, env))
	mux.Handle("/metrics", promhttp.Handler())

	// Admin account surface.
	mux.Handle("/api/admin/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginTier(http.HandlerFunc(adminAuth.Login)),
	}))
	mux.Handle("/api/admin/register", methodMux(map[string]http.Handler{
		http.MethodPost: requireAdmin(superadminOnly(http.HandlerFunc(adminAuth.Register))),
	}))
	mux.Handle("/api/admin/profile", methodMux(map[string]http.Handler{
		http.MethodGet: requireAdmin(http.HandlerFunc(adminAuth.Profile)),
	}))
	mux.Handle("/api/admin/password", methodMux(map[string]http.Handler{
		http.MethodPut: requireAdmin(http.HandlerFunc(adminAuth.ChangePassword)),
	}))

	// Events.
	mux.Handle("/api/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsH.List),
		http.MethodPost: adminOnly(eventsH.Create),
	}))
	mux.Handle("/api/events/slug/{slug}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsH.GetBySlug),
	}))
	mux.Handle("/api/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsH.Get),
		http.MethodPut:    adminOnly(eventsH.Update),
		http.MethodDelete: adminOnly(eventsH.Delete),
	}))

	// Creators.
	mux.Handle("/api/creators", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(creatorsH.List),
		http.MethodPost: adminOnly(creatorsH.Create),
	}))
	mux.Handle("/api/creators/slug/{slug}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(creatorsH.GetBySlug),
	}))
	mux.Handle("/api/creators/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(creatorsH.Get),
		http.MethodPut:    adminOnly(creatorsH.Update),
		http.MethodDelete: adminOnly(creatorsH.Delete),
	}))

	// Builder projects.
	mux.Handle("/api/projects", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(projectsH.List),
		http.MethodPost: adminOnly(projectsH.Create),
	}))
	mux.Handle("/api/projects/slug/{slug}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(projectsH.GetBySlug),
	}))
	mux.Handle("/api/projects/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(projectsH.Get),
		http.MethodPut:    adminOnly(projectsH.Update),
		http.MethodDelete: adminOnly(projectsH.Delete),
	}))

	// Resources.
	mux.Handle("/api/resources", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(resourcesH.List),
		http.MethodPost: adminOnly(resourcesH.Create),
	}))
	mux.Handle("/api/resources/slug/{slug}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(resourcesH.GetBySlug),
	}))
	mux.Handle("/api/resources/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(resourcesH.Get),
		http.MethodPut:    adminOnly(resourcesH.Update),
		http.MethodDelete: adminOnly(resourcesH.Delete),
	}))
	mux.Handle("/api/resources/{id}/download", methodMux(map[string]http.Handler{
		http.MethodPost: downloadTier(http.HandlerFunc(resourcesH.TrackDownload)),
	}))

	// Contact.
	mux.Handle("/api/contact", methodMux(map[string]http.Handler{
		http.MethodPost: submitTier(http.HandlerFunc(contactH.Submit)),
		http.MethodGet:  adminOnly(contactH.List),
	}))
	mux.Handle("/api/contact/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    adminOnly(contactH.Get),
		http.MethodDelete: adminOnly(contactH.Delete),
	}))

	// Newsletter.
	mux.Handle("/api/newsletter/subscribe", methodMux(map[string]http.Handler{
		http.MethodPost: submitTier(http.HandlerFunc(newsletterH.Subscribe)),
	}))
	mux.Handle("/api/newsletter/unsubscribe", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(newsletterH.Unsubscribe),
	}))
	mux.Handle("/api/newsletter", methodMux(map[string]http.Handler{
		http.MethodGet: adminOnly(newsletterH.List),
	}))
	mux.Handle("/api/newsletter/{id}", methodMux(map[string]http.Handler{
		http.MethodDelete: adminOnly(newsletterH.Delete),
	}))

	// Blog posts. Public reads see published posts only; an admin token
	// widens the same routes to drafts.
	mux.Handle("/api/blogs", methodMux(map[string]http.Handler{
		http.MethodGet:  optionalAdmin(http.HandlerFunc(blogsH.List)),
		http.MethodPost: adminOnly(blogsH.Create),
	}))
	mux.Handle("/api/blogs/featured", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(blogsH.Featured),
	}))
	mux.Handle("/api/blogs/categories", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(blogsH.Categories),
	}))
	mux.Handle("/api/blogs/tags/trending", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(blogsH.TrendingTags),
	}))
	mux.Handle("/api/blogs/slug/{slug}", methodMux(map[string]http.Handler{
		http.MethodGet: optionalAdmin(http.HandlerFunc(blogsH.GetBySlug)),
	}))
	mux.Handle("/api/blogs/slug/{slug}/related", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(blogsH.Related),
	}))
	mux.Handle("/api/blogs/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    adminOnly(blogsH.Get),
		http.MethodPut:    adminOnly(blogsH.Update),
		http.MethodDelete: adminOnly(blogsH.Delete),
	}))
	mux.Handle("/api/blogs/{id}/like", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(blogsH.Like),
	}))
	mux.Handle("/api/blogs/{id}/bookmark", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(blogsH.Bookmark),
	}))

	// Showcase.
	mux.Handle("/api/showcase", methodMux(map[string]http.Handler{
		http.MethodGet:  optionalAdmin(http.HandlerFunc(showcaseH.List)),
		http.MethodPost: adminOnly(showcaseH.Create),
	}))
	mux.Handle("/api/showcase/featured", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(showcaseH.Featured),
	}))
	mux.Handle("/api/showcase/trending", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(showcaseH.Trending),
	}))
	mux.Handle("/api/showcase/stats", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(showcaseH.Stats),
	}))
	mux.Handle("/api/showcase/slug/{slug}", methodMux(map[string]http.Handler{
		http.MethodGet: optionalAdmin(http.HandlerFunc(showcaseH.GetBySlug)),
	}))
	mux.Handle("/api/showcase/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    adminOnly(showcaseH.Get),
		http.MethodPut:    adminOnly(showcaseH.Update),
		http.MethodDelete: adminOnly(showcaseH.Delete),
	}))
	mux.Handle("/api/showcase/{id}/star", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(showcaseH.Star),
	}))
	mux.Handle("/api/showcase/{id}/like", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(showcaseH.Like),
	}))

	var handler http.Handler = mux
	handler = limiter.Limit(middleware.TierGeneral)(handler)
	handler = middleware.CORS(d.Config.CORS, d.Logger)(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = middleware.Metrics(mux)(handler)
	handler = middleware.RequestLogging(d.Logger)(handler)
	handler = middleware.CorrelationID(d.Logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
