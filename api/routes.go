package api

import (
	"github.com/gorilla/mux"

	"github.com/jobscout/jobscout/internal/crawler"
	"github.com/jobscout/jobscout/internal/match"
	"github.com/jobscout/jobscout/internal/portfolio"
	"github.com/jobscout/jobscout/pkg/repository"
)

// Deps are the wired services the router needs. Crawler may be nil when the
// crawl loop is disabled; the admin endpoints then answer 503.
type Deps struct {
	Matcher    *match.Matcher
	Portfolios *portfolio.Service
	CompanyJob repository.CompanyJobRepo
	Crawler    *crawler.Service
}

func SetupRoutes(version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	jobsHandler := NewJobsHandler(deps.Matcher, deps.Portfolios)
	candidatesHandler := NewCandidatesHandler(deps.Matcher, deps.Portfolios, deps.CompanyJob)
	portfoliosHandler := NewPortfoliosHandler(deps.Portfolios)
	adminHandler := NewAdminHandler(deps.Crawler)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	// API v1 routes
	apiV1 := r.PathPrefix("/v1").Subrouter()

	// Jobs endpoints; /count and /search must register before /{id}
	apiV1.HandleFunc("/jobs/recommend", jobsHandler.Recommend).Methods("GET")
	apiV1.HandleFunc("/jobs/search", jobsHandler.Search).Methods("GET")
	apiV1.HandleFunc("/jobs/count", jobsHandler.Count).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.GetByID).Methods("GET")

	// Company/candidate endpoints
	apiV1.HandleFunc("/companies/jobs/{id}/candidates", candidatesHandler.MatchCandidates).Methods("GET")

	// Portfolio endpoints
	apiV1.HandleFunc("/portfolios", portfoliosHandler.Save).Methods("POST")
	apiV1.HandleFunc("/portfolios/{id}", portfoliosHandler.Get).Methods("GET")

	// Admin endpoints
	apiV1.HandleFunc("/admin/crawl", adminHandler.TriggerCrawl).Methods("POST")
	apiV1.HandleFunc("/admin/reset", adminHandler.ResetCorpus).Methods("POST")

	return r
}
