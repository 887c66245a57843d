package artifact

import "time"

const (
	// DefaultTTL is how long a generated card stays on disk.
	DefaultTTL = 60 * time.Second

	// DefaultReaperSchedule is how often expired cards are swept.
	DefaultReaperSchedule = "@every 5s"
)
