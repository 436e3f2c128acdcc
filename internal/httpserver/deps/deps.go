package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	redisstore "github.com/MrSnakeDoc/mdnspanel/internal/store/redis"
)

// Registry is the service registry synchronizer as seen by the API.
type Registry interface {
	Services() []domain.ServiceRecord
	Find(id string) (domain.ServiceRecord, bool)
	Summary() domain.StatusSummary
	Loading() bool
	LastError() string
	LastApplied() time.Time
	Subscribe(fn func([]domain.ServiceRecord)) func()

	Add(ctx context.Context, spec domain.ServiceSpec) error
	Update(ctx context.Context, id string, spec domain.ServiceSpec) error
	Remove(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) error
	StartAll(ctx context.Context) error
	StopAll(ctx context.Context) error
	ImportAll(ctx context.Context, serialized string) error
	ExportAll(ctx context.Context) (string, error)
}

// EventLog is the event log buffer.
type EventLog interface {
	All() []domain.LogEntry
	Len() int
	Clear(ctx context.Context) error
	Subscribe(fn func(domain.LogEntry)) func()
}

// Interfaces is the network interface cache.
type Interfaces interface {
	Interfaces() []domain.NetworkInterface
	LastRefresh() time.Time
	Refresh(ctx context.Context) error
	HostName(ctx context.Context) (string, error)
}

// Archive is the Redis-backed log archive and backup store.
type Archive interface {
	Ping(ctx context.Context) error
	RecentLogEntries(ctx context.Context, n int) ([]domain.LogEntry, error)
	ArchiveLength(ctx context.Context) (int64, error)
	ListBackups(ctx context.Context) ([]redisstore.Backup, error)
	GetBackup(ctx context.Context, id string) (redisstore.Backup, error)
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // client IPs allowed to access the API
	TrustProxy   bool             // true if running behind a trusted reverse proxy
	Transport    string           // "memory" | "nats", reported by /api/infra

	RequestTimeout time.Duration // per-request deadline for API calls (stream excluded)

	Registry   Registry
	EventLog   EventLog
	Interfaces Interfaces
	Archive    Archive      // nil when Redis is not configured
	Metrics    http.Handler // nil disables /metrics
}
