package service

import (
	"context"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/config"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/models"
)

// Repository is the storage surface consumed by the services. The single
// sqlite implementation lives in internal/server/repository/sqlite; tests
// may substitute isolated instances.
type Repository interface {
	CreateIdentity(ctx context.Context, username, credentialHash string, isDefault bool) (models.Identity, error)
	GetIdentity(ctx context.Context, id string) (models.Identity, error)
	GetIdentityByUsername(ctx context.Context, username string) (models.Identity, error)
	CountIdentities(ctx context.Context) (int64, error)
	ClearDefaultAccounts(ctx context.Context) error

	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error

	CreateObservation(ctx context.Context, rec models.ObservationRecord) (models.ObservationRecord, error)
	GetObservation(ctx context.Context, id int64) (models.ObservationRecord, error)
	ReplaceObservation(ctx context.Context, rec models.ObservationRecord) (models.ObservationRecord, error)
	ListObservations(ctx context.Context) ([]models.ObservationRecord, error)
	BulkInsertObservations(ctx context.Context, recs []models.ObservationRecord) ([]int64, error)
}

type Services struct {
	Auth         *AuthService
	Observations *ObservationsService
	Search       *SearchService
	Exchange     *ExchangeService
}

func NewServices(repo Repository, cfg config.Config) *Services {
	return &Services{
		Auth: &AuthService{
			repo:              repo,
			jwtSecret:         []byte(cfg.JWTSecret),
			sessionTTL:        cfg.SessionTTL,
			bootstrapUser:     cfg.BootstrapUser,
			bootstrapPassword: cfg.BootstrapPassword,
		},
		Observations: &ObservationsService{repo: repo},
		Search:       &SearchService{repo: repo},
		Exchange:     &ExchangeService{repo: repo},
	}
}
