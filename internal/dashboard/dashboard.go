// Package dashboard assembles the student dashboard: credit statistics, the semester's top performers,
// the student's own rank and the latest announcements.
//
// The sections are fetched concurrently. How a failed section is handled depends on the error mode:
// in lenient mode the section is shown with default values and the failure is logged,
// in strict mode the first failure is returned. A rejected session is always returned so the caller can send the student to the login screen.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/metrics"
	"github.com/pasc-cca/ccadash/internal/session"
)

const (
	TopPerformersLimit = 5
	AnnouncementsLimit = 5

	sectionStats         = "stats"
	sectionLeaderboard   = "leaderboard"
	sectionAnnouncements = "announcements"
)

type Stats struct {
	TotalCredits   int     `json:"totalCredits"`
	EventsAttended int     `json:"eventsAttended"`
	UpcomingEvents int     `json:"upcomingEvents"`
	CompletionRate float64 `json:"completionRate"`
}

type StudentDashboard struct {
	Stats          Stats                     `json:"stats"`
	TopPerformers  []client.LeaderboardEntry `json:"topPerformers"`
	UserRank       *client.LeaderboardEntry  `json:"userRank,omitempty"`
	UpcomingEvents []client.Event            `json:"upcomingEvents"`
	Announcements  []client.Announcement     `json:"announcements"`
	// Unavailable lists the sections shown with default values (lenient mode only)
	Unavailable []string `json:"unavailable,omitempty"`
}

type Service struct {
	client  *client.Client
	mode    config.ErrorMode
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService returns a dashboard service using c, which should be bound to the student's session
func NewService(c *client.Client, mode config.ErrorMode, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = config.ErrorModeLenient
	}
	return &Service{
		client:  c,
		mode:    mode,
		logger:  logger,
		metrics: m,
	}
}

// Build fetches and assembles the dashboard.
func (s *Service) Build(ctx context.Context) (*StudentDashboard, error) {
	dash := &StudentDashboard{
		TopPerformers:  []client.LeaderboardEntry{},
		UpcomingEvents: []client.Event{},
		Announcements:  []client.Announcement{},
	}

	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	// fallback decides whether a section failure ends the build
	fallback := func(section string, err error) error {
		if s.mode == config.ErrorModeStrict || errors.Is(err, client.ErrSessionInvalidated) {
			return fmt.Errorf("fetching dashboard %s: %w", section, err)
		}
		// the build was cancelled or a sibling section already failed it
		if gctx.Err() != nil {
			return fmt.Errorf("fetching dashboard %s: %w: %w", section, gctx.Err(), err)
		}

		s.logger.Warn("dashboard section unavailable, showing defaults",
			slog.String("component", "dashboard.Build"),
			slog.String("section", section),
			slog.String("error", err.Error()),
		)
		s.metrics.DashboardFallback(section)

		mu.Lock()
		dash.Unavailable = append(dash.Unavailable, section)
		mu.Unlock()
		return nil
	}

	g.Go(func() error {
		res, err := s.client.Analytics.GetUserAnalytics(gctx)
		if err != nil {
			return fallback(sectionStats, err)
		}
		if res.Success {
			dash.Stats = Stats{
				TotalCredits:   res.Data.Overview.TotalCredits,
				EventsAttended: res.Data.Overview.EventsAttended,
				UpcomingEvents: len(res.Data.UpcomingEvents),
				CompletionRate: res.Data.Overview.AttendanceRate,
			}
			if res.Data.UpcomingEvents != nil {
				dash.UpcomingEvents = res.Data.UpcomingEvents
			}
		}
		return nil
	})

	g.Go(func() error {
		res, err := s.client.Leaderboard.Get(gctx, client.LeaderboardQuery{
			Period: client.PeriodSemester,
			Limit:  TopPerformersLimit,
		})
		if err != nil {
			return fallback(sectionLeaderboard, err)
		}
		var leaders []client.LeaderboardEntry
		if res.Success && res.Data != nil {
			leaders = res.Data
			dash.TopPerformers = leaders
		}

		userRank, err := s.userRank(gctx, leaders)
		if err != nil {
			return err
		}
		dash.UserRank = userRank
		return nil
	})

	g.Go(func() error {
		res, err := s.client.Announcements.GetAll(gctx, client.AnnouncementFilters{Limit: AnnouncementsLimit})
		if err != nil {
			return fallback(sectionAnnouncements, err)
		}
		if res.Success && res.Data != nil {
			dash.Announcements = res.Data
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

// userRank finds the signed in student's leaderboard entry.
// A failed rank lookup falls back to searching the leaderboard, only a rejected session is returned as an error.
func (s *Service) userRank(ctx context.Context, leaders []client.LeaderboardEntry) (*client.LeaderboardEntry, error) {
	userID := s.currentUserID()

	res, err := s.client.Leaderboard.GetMyRank(ctx)
	if err != nil {
		if errors.Is(err, client.ErrSessionInvalidated) {
			return nil, fmt.Errorf("fetching rank: %w", err)
		}
		s.logger.Debug("could not fetch rank, searching the leaderboard",
			slog.String("component", "dashboard.userRank"),
			slog.String("error", err.Error()),
		)
		return findUser(leaders, userID), nil
	}

	if !res.Success {
		return nil, nil
	}
	return ResolveRank(leaders, userID, res.Data), nil
}

// ResolveRank prefers the student's full leaderboard entry and otherwise builds a minimal entry from the rank lookup.
// It returns nil when the student is not ranked.
func ResolveRank(leaders []client.LeaderboardEntry, userID int, rank client.MyRank) *client.LeaderboardEntry {
	if entry := findUser(leaders, userID); entry != nil {
		return entry
	}
	if rank.Rank > 0 {
		return &client.LeaderboardEntry{
			UserID:   userID,
			UserName: "You",
			Credits:  rank.Credits,
			Rank:     rank.Rank,
		}
	}
	return nil
}

func findUser(leaders []client.LeaderboardEntry, userID int) *client.LeaderboardEntry {
	if userID == 0 {
		return nil
	}
	for i := range leaders {
		if leaders[i].UserID == userID {
			entry := leaders[i]
			return &entry
		}
	}
	return nil
}

// currentUserID returns the user id carried by the session token, or 0
func (s *Service) currentUserID() int {
	claims, err := session.ParseClaims(s.client.Session().Token())
	if err != nil {
		return 0
	}
	return claims.AccountID()
}
