package artifact

import (
	"time"

	"github.com/rs/zerolog"
)

// ReaperJob deletes expired artifacts. It should be scheduled every few seconds.
type ReaperJob struct {
	manager *Manager
	log     zerolog.Logger
}

func NewReaperJob(manager *Manager, log zerolog.Logger) *ReaperJob {
	return &ReaperJob{
		manager: manager,
		log:     log.With().Str("job", "artifact_reaper").Logger(),
	}
}

// Run sweeps expired artifacts. Deletion problems are logged by the manager
// and never fail the job.
func (j *ReaperJob) Run() error {
	if n := j.manager.Sweep(time.Now()); n > 0 {
		j.log.Debug().Int("deleted", n).Int("pending", j.manager.Pending()).Msg("Expired artifacts removed")
	}
	return nil
}

func (j *ReaperJob) Name() string {
	return "artifact_reaper"
}
