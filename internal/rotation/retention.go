package rotation

import (
	"fmt"
	"time"
)

// DefaultRetentionDays applies when Options.Retention is left unset.
const DefaultRetentionDays = 30

// Retention is the snapshot retention policy: a day count or keep forever.
// The zero value means "unset" and resolves to DefaultRetentionDays.
type Retention struct {
	days    int
	forever bool
	set     bool
}

// KeepDays retains snapshots dated on or after today minus days.
func KeepDays(days int) Retention {
	return Retention{days: days, set: true}
}

// KeepForever disables pruning.
func KeepForever() Retention {
	return Retention{forever: true, set: true}
}

// Days returns the retention day count and whether pruning is bounded.
func (r Retention) Days() (int, bool) {
	if !r.set {
		return DefaultRetentionDays, true
	}
	if r.forever {
		return 0, false
	}
	return r.days, true
}

// Cutoff returns the oldest snapshot date that is kept for the given day.
// Snapshots dated strictly before the cutoff are pruned. ok is false when
// retention is unbounded.
func (r Retention) Cutoff(today time.Time) (cutoff time.Time, ok bool) {
	days, bounded := r.Days()
	if !bounded {
		return time.Time{}, false
	}
	return civilDate(today).AddDate(0, 0, -days), true
}

func (r Retention) String() string {
	days, bounded := r.Days()
	if !bounded {
		return "forever"
	}
	return fmt.Sprintf("%dd", days)
}

func (r Retention) validate() error {
	if days, bounded := r.Days(); bounded && days < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRetention, days)
	}
	return nil
}
