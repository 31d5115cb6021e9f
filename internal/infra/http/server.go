package http

import (
	"context"
	"fmt"
	"os"
	"time"

	"provamark/internal/config"
	"provamark/internal/domain"
	"provamark/internal/infra/auditmem"
	"provamark/internal/infra/c2patool"
	"provamark/internal/infra/db"
	"provamark/internal/infra/imaging"
	"provamark/internal/infra/policyopa"
	"provamark/internal/infra/ratelimit"
	"provamark/internal/infra/trustmark"
	"provamark/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	encodeUC *usecase.EncodeAsset
	decodeUC *usecase.DecodeAsset
	audit    *usecase.AuditEmitter

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool

	initErr error
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Encode      *usecase.EncodeAsset
	Decode      *usecase.DecodeAsset
	Audit       *usecase.AuditEmitter
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:      cfg,
		r:        r,
		encodeUC: deps.Encode,
		decodeUC: deps.Decode,
		audit:    deps.Audit,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	for _, dir := range []string{s.cfg.UploadDir, s.cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.initErr = fmt.Errorf("create %s: %w", dir, err)
			return
		}
	}

	schema, err := domain.ParseSchema(s.cfg.TrustmarkSchema)
	if err != nil {
		s.initErr = err
		return
	}

	codec := trustmark.New(trustmark.Config{
		Binary:    s.cfg.TrustmarkBin,
		ModelsDir: s.cfg.TrustmarkModelsDir,
		Variant:   s.cfg.TrustmarkVariant,
		Schema:    schema,
	})
	signer := c2patool.New(s.cfg.C2PAToolBin, c2patool.CredentialsFromDir(s.cfg.KeysDir, s.cfg.TAURL))

	var auditRepo usecase.AuditEventRepository
	if s.store != nil && s.store.DB != nil {
		auditRepo = db.NewAuditEventRepository(s.store.DB)
	} else {
		auditRepo = auditmem.New()
	}
	s.audit = usecase.NewAuditEmitter(auditRepo, nil)

	var policy usecase.PolicyGate
	if s.cfg.PolicyBundlePath != "" {
		engine, err := policyopa.NewEngineFromPath(context.Background(), s.cfg.PolicyBundlePath)
		if err != nil {
			s.initErr = fmt.Errorf("load policy bundle: %w", err)
			return
		}
		policy = engine
	}

	s.encodeUC = &usecase.EncodeAsset{
		Codec:     codec,
		Signer:    signer,
		Images:    imaging.Service{},
		Policy:    policy,
		Audit:     s.audit,
		Schema:    schema,
		Variant:   s.cfg.TrustmarkVariant,
		UploadDir: s.cfg.UploadDir,
		OutputDir: s.cfg.OutputDir,
		MaxPixels: s.cfg.MaxPixels,
	}
	s.decodeUC = &usecase.DecodeAsset{
		Codec:     codec,
		Manifests: signer,
		Audit:     s.audit,
		UploadDir: s.cfg.UploadDir,
	}

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) routes() {
	if s.cfg.MaxUploadBytes > 0 {
		s.r.Use(limitRequestBody(s.cfg.MaxUploadBytes))
	}

	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(200, gin.H{"status": "ok", "mode": dbMode})
	})

	s.r.POST("/encode", s.handleEncode)
	s.r.POST("/decode", s.handleDecode)
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}
