package api

import (
	"database/sql"

	"github.com/prepdeck/prepdeck/internal/services"
	"github.com/prepdeck/prepdeck/internal/worker"
)

// Server holds the services the HTTP layer dispatches to.
type Server struct {
	DB          *sql.DB
	Decks       services.DeckService
	Reviews     services.ReviewService
	Study       services.StudyService
	Planner     services.PlannerService
	PlannerPool *worker.Pool
}
