package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/dmorales/becas-core/internal/app/models"
	appRepos "github.com/dmorales/becas-core/internal/app/repositories"
	"github.com/dmorales/becas-core/internal/config"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
	pkgAuth "github.com/dmorales/becas-core/internal/pkg/auth"
)

// CreateDefaultData creates the default reviewer account and the current
// period if they don't exist yet, so a fresh deployment is usable right away.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	periodRepo := appRepos.NewPeriodRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (reviewer account, current period)...")
	var finalErr error

	// --- Default reviewer account --- //
	reviewerEmail := config.GetEnv("SEED_REVIEWER_EMAIL", "becas@uni.edu")
	reviewerPassword := config.GetEnv("SEED_REVIEWER_PASSWORD", "changeme123")

	if _, err := userRepo.GetUserByEmail(ctx, reviewerEmail); errors.Is(err, apperrors.ErrUserNotFound) {
		hashed, hashErr := pkgAuth.HashPassword(reviewerPassword)
		if hashErr != nil {
			lgr.Error().Err(hashErr).Msg("Error hashing default reviewer password")
			finalErr = errors.Join(finalErr, hashErr)
		} else {
			reviewer := &appModels.User{
				Email:     reviewerEmail,
				Password:  hashed,
				FirstName: "Scholarship",
				LastName:  "Office",
				RoleType:  appModels.RoleReviewer,
				IsActive:  true,
			}
			if _, createErr := userRepo.CreateUser(ctx, reviewer); createErr != nil &&
				!errors.Is(createErr, apperrors.ErrEmailAlreadyExists) {
				lgr.Error().Err(createErr).Msg("Error creating default reviewer account")
				finalErr = errors.Join(finalErr, createErr)
			} else {
				lgr.Info().Str("email", reviewerEmail).Msg("Default reviewer account created")
			}
		}
	} else if err != nil {
		lgr.Error().Err(err).Msg("Error checking for default reviewer account")
		finalErr = errors.Join(finalErr, err)
	}

	// --- Current period --- //
	period := &appModels.Period{Name: "2026-2", Year: 2026, Term: 2, Active: true}
	if _, err := periodRepo.Create(ctx, period); err != nil &&
		!errors.Is(err, apperrors.ErrPeriodAlreadyExists) {
		lgr.Error().Err(err).Msg("Error creating default period")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check complete.")
	return finalErr
}
