package main

import (
	"os"

	"github.com/dmorales/becas-core/internal/pkg/logger"
	"github.com/dmorales/becas-core/internal/server"
)

// @title Scholarship Award Engine API
// @version 1.0
// @description API for roster import, merit-based selection and award lifecycle management

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
	os.Exit(0)
}
