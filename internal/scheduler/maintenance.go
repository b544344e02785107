package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/database"
	"github.com/jomolabs/jomo/internal/modules/history"
)

// Default retention for score history snapshots.
const defaultHistoryRetention = 90 * 24 * time.Hour

// MaintenanceJob keeps the database healthy during long uptimes:
// it truncates the WAL file and prunes old score snapshots.
type MaintenanceJob struct {
	db          *database.DB
	historyRepo *history.Repository
	retention   time.Duration
	log         zerolog.Logger
}

// NewMaintenanceJob creates the database maintenance job.
func NewMaintenanceJob(db *database.DB, historyRepo *history.Repository, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:          db,
		historyRepo: historyRepo,
		retention:   defaultHistoryRetention,
		log:         log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "db_maintenance"
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		return err
	}

	pruned, err := j.historyRepo.PruneBefore(time.Now().Add(-j.retention))
	if err != nil {
		return err
	}
	if pruned > 0 {
		j.log.Info().Int64("pruned", pruned).Msg("Pruned old score snapshots")
	}

	return nil
}
