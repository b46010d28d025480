package engine

// Defaults applied when Config fields are left unset.
const (
	DefaultDuplicateWindowDays     = 3
	DefaultNotificationHorizonDays = 1
	DefaultOvercrowdingWindowDays  = 30
)

// Config carries every tunable the engine needs. Nothing in here is ever
// hard-coded downstream; capacity and the collector allow-list are
// business facts that change without a deploy.
type Config struct {
	// Capacity is the number of simultaneously occupiable room-units.
	Capacity int

	// Collectors is the exact, case-sensitive allow-list of staff who may
	// be credited with collecting payment. "loc le" does not match
	// "LOC LE" on purpose: near-misses must surface as uncollected.
	Collectors []string

	// DuplicateWindowDays is the widest day gap between two check-ins of
	// one guest that still flags as a probable double entry. Default 3.
	DuplicateWindowDays int

	// CommissionPriorityThreshold escalates notifications whose booking
	// commission strictly exceeds it.
	CommissionPriorityThreshold Money

	// NotificationHorizonDays is how far past today reminders look.
	// Default 1: today and tomorrow.
	NotificationHorizonDays int

	// OvercrowdingWindowDays bounds the overcrowding scan in both
	// directions from today. Default 30.
	OvercrowdingWindowDays int
}

// Validate reports fatal misconfiguration. Per-record data problems are a
// RunReport concern; these are not recoverable and abort before any
// computation runs.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigurationError{Field: "capacity", Reason: "must be positive"}
	}
	if len(c.Collectors) == 0 {
		return &ConfigurationError{Field: "collectors", Reason: "allow-list is empty"}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.DuplicateWindowDays <= 0 {
		c.DuplicateWindowDays = DefaultDuplicateWindowDays
	}
	if c.NotificationHorizonDays <= 0 {
		c.NotificationHorizonDays = DefaultNotificationHorizonDays
	}
	if c.OvercrowdingWindowDays <= 0 {
		c.OvercrowdingWindowDays = DefaultOvercrowdingWindowDays
	}
	return c
}

// IsCollector is the single place collector identity is checked: exact,
// case-sensitive membership, no trimming, no folding.
func (c Config) IsCollector(name string) bool {
	for _, col := range c.Collectors {
		if name == col {
			return true
		}
	}
	return false
}
