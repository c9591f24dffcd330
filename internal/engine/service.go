package engine

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

type Service struct {
	kv           storage.KV
	tasks        *storage.TaskRepo
	categories   *storage.CategoryRepo
	history      *storage.HistoryRepo
	achievements *storage.AchievementRepo
	events       *Dispatcher

	now           func() time.Time
	loc           *time.Location
	retentionDays int
	mergeAliases  bool
	log           *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithRetentionDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.retentionDays = days
		}
	}
}

// WithAliasMerging credits alias categories with their group's points.
func WithAliasMerging(on bool) Option {
	return func(s *Service) { s.mergeAliases = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(kv storage.KV, opts ...Option) *Service {
	s := &Service{
		kv:            kv,
		tasks:         storage.NewTaskRepo(kv),
		categories:    storage.NewCategoryRepo(kv),
		history:       storage.NewHistoryRepo(kv),
		achievements:  storage.NewAchievementRepo(kv),
		events:        &Dispatcher{},
		now:           time.Now,
		loc:           time.Local,
		retentionDays: DefaultRetentionDays,
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events.Subscribe(&AchievementTracker{svc: s})
	return s
}

func (s *Service) KV() storage.KV                            { return s.kv }
func (s *Service) TaskRepo() *storage.TaskRepo               { return s.tasks }
func (s *Service) CategoryRepo() *storage.CategoryRepo       { return s.categories }
func (s *Service) HistoryRepo() *storage.HistoryRepo         { return s.history }
func (s *Service) AchievementRepo() *storage.AchievementRepo { return s.achievements }
func (s *Service) Events() *Dispatcher                       { return s.events }
func (s *Service) Location() *time.Location                  { return s.loc }
func (s *Service) Now() time.Time                            { return s.now() }

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Field: "title", Reason: "required"}
	}
	return t, nil
}

func findTaskIndex(tasks []storage.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
