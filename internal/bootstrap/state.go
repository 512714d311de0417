package bootstrap

// State names a position in the startup sequence. ServiceStarted is the only
// non-terminal state that persists for the process lifetime.
type State int

const (
	StateInit State = iota
	StateGuardAcquired
	StateConfigResolved
	StateSchemaChecked
	StateRefreshLaunched
	StateServiceStarted
	StateShuttingDown
	StateGuardReleased
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateGuardAcquired:
		return "guard_acquired"
	case StateConfigResolved:
		return "config_resolved"
	case StateSchemaChecked:
		return "schema_checked"
	case StateRefreshLaunched:
		return "refresh_launched"
	case StateServiceStarted:
		return "service_started"
	case StateShuttingDown:
		return "shutting_down"
	case StateGuardReleased:
		return "guard_released"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
