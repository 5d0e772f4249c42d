package handlers

import (
	"context"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/leaderboard"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/ratio"
	"github.com/openmohaa/statboard/internal/registry"
	"github.com/openmohaa/statboard/internal/scores"
	"github.com/openmohaa/statboard/internal/world"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// EventQueue is the dispatch queue of the scheduler
type EventQueue interface {
	Enqueue(event models.Event) bool
	QueueDepth() int
}

// OutboxDrainer hands queued host actions to the polling add-on
type OutboxDrainer interface {
	Drain() world.Batch
}

// PlayerDirectory reports online players
type PlayerDirectory interface {
	Player(name string) (models.Player, bool)
}

// HistoryReader serves archived snapshots
type HistoryReader interface {
	History(ctx context.Context, q leaderboard.HistoryQuery) ([]leaderboard.HistoryPoint, error)
}

// Check is one readiness probe
type Check func(ctx context.Context) error

type Config struct {
	Events      EventQueue
	Outbox      OutboxDrainer
	Players     PlayerDirectory
	ConfigStore configstore.ReadWriter
	Registry    *registry.Registry
	Ratios      *ratio.Repository
	Leaderboard *leaderboard.Snapshotter
	History     HistoryReader // nil when no archive is configured
	Scores      *scores.Store
	Checks      map[string]Check
	ServerToken string
	AdminToken  string
	Logger      *zap.Logger
}

type Handler struct {
	events      EventQueue
	outbox      OutboxDrainer
	players     PlayerDirectory
	config      configstore.ReadWriter
	registry    *registry.Registry
	ratios      *ratio.Repository
	leaderboard *leaderboard.Snapshotter
	history     HistoryReader
	scores      *scores.Store
	checks      map[string]Check
	serverToken string
	adminToken  string
	logger      *zap.SugaredLogger
	validator   *validator.Validate
}

var ratioIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		events:      cfg.Events,
		outbox:      cfg.Outbox,
		players:     cfg.Players,
		config:      cfg.ConfigStore,
		registry:    cfg.Registry,
		ratios:      cfg.Ratios,
		leaderboard: cfg.Leaderboard,
		history:     cfg.History,
		scores:      cfg.Scores,
		checks:      cfg.Checks,
		serverToken: hashToken(cfg.ServerToken),
		adminToken:  hashToken(cfg.AdminToken),
		logger:      logger.Sugar(),
		validator:   newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// ratio ids become counter names and JSON keys: no spaces, no path syntax
	_ = v.RegisterValidation("ratioid", func(fl validator.FieldLevel) bool {
		return ratioIDPattern.MatchString(fl.Field().String())
	})
	return v
}
