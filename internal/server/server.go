package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ytza/ytza/internal/billing"
	"github.com/ytza/ytza/internal/config"
	"github.com/ytza/ytza/internal/content"
	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
	"github.com/ytza/ytza/internal/generation"
	newsletterdomain "github.com/ytza/ytza/internal/newsletter/domain"
	obslogger "github.com/ytza/ytza/internal/observability/logger"
	obsmetrics "github.com/ytza/ytza/internal/observability/metrics"
	projectdomain "github.com/ytza/ytza/internal/project/domain"
	"github.com/ytza/ytza/internal/prompt"
	purchasedomain "github.com/ytza/ytza/internal/purchase/domain"
	"github.com/ytza/ytza/internal/ratelimit"
	"github.com/ytza/ytza/internal/thumbnail"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	limiter       *ratelimit.Limiter
	creditsSvc    creditsdomain.Service
	projectSvc    projectdomain.Service
	purchaseSvc   purchasedomain.Service
	newsletterSvc newsletterdomain.Service
	billingSvc    *billing.Service
	thumbnailSvc  *thumbnail.Service
	contentSvc    *content.Service
	promptBuilder *prompt.Builder
	orchestrator  *generation.Orchestrator
	metrics       *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Limiter       *ratelimit.Limiter
	CreditsSvc    creditsdomain.Service
	ProjectSvc    projectdomain.Service
	PurchaseSvc   purchasedomain.Service
	NewsletterSvc newsletterdomain.Service
	BillingSvc    *billing.Service
	ThumbnailSvc  *thumbnail.Service
	ContentSvc    *content.Service
	PromptBuilder *prompt.Builder
	Orchestrator  *generation.Orchestrator
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		limiter:       p.Limiter,
		creditsSvc:    p.CreditsSvc,
		projectSvc:    p.ProjectSvc,
		purchaseSvc:   p.PurchaseSvc,
		newsletterSvc: p.NewsletterSvc,
		billingSvc:    p.BillingSvc,
		thumbnailSvc:  p.ThumbnailSvc,
		contentSvc:    p.ContentSvc,
		promptBuilder: p.PromptBuilder,
		orchestrator:  p.Orchestrator,
		metrics:       p.Metrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.Use(s.CORS())

	api := r.Group("/api")
	api.GET("/health", s.Health)
	api.HEAD("/health", s.Health)
	api.POST("/newsletter", s.RateLimit(ratelimit.General), s.Newsletter)
	api.POST("/webhooks/stripe", s.RateLimit(ratelimit.Webhook), s.StripeWebhook)

	authed := api.Group("")
	authed.Use(s.AuthRequired())
	{
		authed.POST("/generate-thumbnail", s.RateLimit(ratelimit.AIGeneration), s.GenerateThumbnail)
		authed.POST("/generate-content", s.RateLimit(ratelimit.AIGeneration), s.GenerateContent)
		authed.POST("/analyze-prompt", s.RateLimit(ratelimit.AIGeneration), s.AnalyzePrompt)

		authed.POST("/save-project", s.RateLimit(ratelimit.General), s.SaveProject)
		authed.POST("/update-project-thumbnail", s.RateLimit(ratelimit.General), s.UpdateProjectThumbnail)
		authed.POST("/update-project-content", s.RateLimit(ratelimit.General), s.UpdateProjectContent)
		authed.GET("/projects", s.RateLimit(ratelimit.General), s.ListProjects)

		authed.GET("/credits", s.RateLimit(ratelimit.General), s.Credits)
		authed.GET("/purchase-history", s.RateLimit(ratelimit.General), s.PurchaseHistory)
		authed.POST("/select-plan", s.RateLimit(ratelimit.Payment), s.SelectPlan)
		authed.POST("/create-checkout-session", s.RateLimit(ratelimit.Payment), s.CreateCheckoutSession)
		authed.POST("/verify-payment", s.RateLimit(ratelimit.Payment), s.VerifyPayment)

		authed.POST("/studio/generate", s.RateLimit(ratelimit.AIGeneration), s.StudioGenerate)
		authed.POST("/studio/regenerate-image", s.RateLimit(ratelimit.AIGeneration), s.StudioRegenerateImage)
		authed.POST("/studio/regenerate-content", s.RateLimit(ratelimit.AIGeneration), s.StudioRegenerateContent)
	}
}
