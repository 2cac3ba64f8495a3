package apiv1

import (
	"class-access/internal/infra/api"
	"class-access/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server holds the use cases behind /api/v1.
type Server struct {
	redeem  usecase.RedemptionUseCase
	enroll  usecase.EnrollmentUseCase
	access  usecase.AccessUseCase
	codes   usecase.CodeUseCase
	stats   usecase.StatsUseCase
	auth    *api.AuthManager
	log     *zerolog.Logger
	maxBody int64
}

func NewServer(
	redeem usecase.RedemptionUseCase,
	enroll usecase.EnrollmentUseCase,
	access usecase.AccessUseCase,
	codes usecase.CodeUseCase,
	stats usecase.StatsUseCase,
	auth *api.AuthManager,
	logger *zerolog.Logger,
) *Server {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Server{
		redeem:  redeem,
		enroll:  enroll,
		access:  access,
		codes:   codes,
		stats:   stats,
		auth:    auth,
		log:     logger,
		maxBody: 1 << 16,
	}
}

// RegisterAPIV1 mounts every /api/v1 route on r.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(api.Authenticate(s.auth, s.log))

		r.Get("/classes/{classID}/access", s.handleHasAccess)

		r.Group(func(r chi.Router) {
			r.Use(api.RequireUser)
			r.Post("/redemptions", s.handleRedeem)
			r.Post("/classes/{classID}/enrollments", s.handleEnrollFree)
			r.Get("/me/enrollments", s.handleMyEnrollments)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(api.RequireAdmin)
			r.Post("/classes/{classID}/codes", s.handleIssueCodes)
			r.Get("/classes/{classID}/codes", s.handleListCodes)
			r.Get("/classes/{classID}/stats", s.handleClassStats)
		})
	})
}
