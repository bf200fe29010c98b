package store

import (
	"fmt"
	"strings"
	"time"
)

// Supported driver keys.
const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Run is a single step-execution record.
type Run struct {
	ID        int64
	WorkerID  string
	Step      string
	Outcome   string
	Failed    bool
	ElapsedMS int64
	// Body is the captured response body, when saving bodies is enabled.
	Body  *string
	RanAt time.Time
}

// Store persists step-execution history. Implementations are per-driver;
// recording is append-only.
type Store interface {
	Connect() error
	Ensure() error
	RecordRun(r Run) error
	ListRuns(workerID string) ([]Run, error)
	Close() error
}

// Config selects and configures a store backend.
type Config struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	// DSN is the driver-specific connection string. For sqlite, Path may be
	// given instead and is turned into a file DSN.
	DSN  string `mapstructure:"dsn" yaml:"dsn"`
	Path string `mapstructure:"path" yaml:"path"`
}

// Open constructs, connects and initializes the configured backend.
// An empty driver defaults to sqlite.
func (c Config) Open() (Store, error) {
	var st Store
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "", DriverSqlite:
		st = NewSqliteStore(c.sqliteDSN())
	case DriverPostgres:
		if c.DSN == "" {
			return nil, fmt.Errorf("store: postgres driver requires a dsn")
		}
		st = NewPostgresStore(c.DSN)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", c.Driver)
	}
	if err := st.Connect(); err != nil {
		return nil, err
	}
	if err := st.Ensure(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func (c Config) sqliteDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Path != "" {
		return fmt.Sprintf("file:%s?_busy_timeout=5000", c.Path)
	}
	return ":memory:"
}
