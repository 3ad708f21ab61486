package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/dashboard"
	"github.com/pasc-cca/ccadash/internal/helpers"
)

func parseID(name, value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, value)
	}
	return id, nil
}

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your credits, rank, upcoming events and announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}

			svc := dashboard.NewService(a.client, config.ErrorMode(a.profile.ErrorMode), a.logger, nil)
			dash, err := svc.Build(a.context(cmd))
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.out.value(dash)
			}
			return printDashboard(a.out, dash)
		},
	}
}

func printDashboard(o *output, dash *dashboard.StudentDashboard) error {
	o.line("Credits:          %s", helpers.FormatNumber(dash.Stats.TotalCredits))
	o.line("Events attended:  %s", helpers.FormatNumber(dash.Stats.EventsAttended))
	o.line("Upcoming events:  %s", helpers.FormatNumber(dash.Stats.UpcomingEvents))
	o.line("Completion rate:  %s", helpers.FormatPercent(dash.Stats.CompletionRate))
	if dash.UserRank != nil {
		o.line("Your rank:        %s (%s credits)", helpers.Ordinal(dash.UserRank.Rank), helpers.FormatNumber(dash.UserRank.Credits))
	}

	if len(dash.TopPerformers) > 0 {
		o.line("\nTop performers")
		if err := o.table("RANK\tNAME\tCREDITS", leaderboardRows(dash.TopPerformers, false)); err != nil {
			return err
		}
	}

	if len(dash.UpcomingEvents) > 0 {
		o.line("\nUpcoming events")
		if err := o.table("ID\tTITLE\tDATE\tCREDITS", eventRows(dash.UpcomingEvents, false)); err != nil {
			return err
		}
	}

	if len(dash.Announcements) > 0 {
		o.line("\nAnnouncements")
		for _, an := range dash.Announcements {
			o.line("  %s", an.Title)
		}
	}

	if len(dash.Unavailable) > 0 {
		o.line("\nCould not load: %s", strings.Join(dash.Unavailable, ", "))
	}
	return nil
}

func leaderboardRows(entries []client.LeaderboardEntry, withEvents bool) [][]any {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		row := []any{e.Rank, e.DisplayName(), helpers.FormatNumber(e.Credits)}
		if withEvents {
			row = append(row, e.EventsAttended)
		}
		rows = append(rows, row)
	}
	return rows
}

func eventRows(events []client.Event, withVenue bool) [][]any {
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		row := []any{e.ID, e.Title, helpers.FormatDate(e.StartDate)}
		if withVenue {
			row = append(row, e.Venue, helpers.Label(e.Status))
		}
		row = append(row, e.Credits)
		rows = append(rows, row)
	}
	return rows
}

func newLeaderboardCommand(a *app) *cobra.Command {
	var query client.LeaderboardQuery
	var mine bool

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the credits leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx := a.context(cmd)
			query.Period = strings.ToUpper(query.Period)

			if mine {
				res, err := a.client.Leaderboard.GetMyRank(ctx)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return a.out.json(res.Raw)
				}
				if !res.Success {
					return responseError(res.Message, "Could not load your rank.")
				}
				a.out.line("You are %s of %s with %s credits",
					helpers.Ordinal(res.Data.Rank), helpers.FormatNumber(res.Data.TotalUsers), helpers.FormatNumber(res.Data.Credits))
				return nil
			}

			res, err := a.client.Leaderboard.Get(ctx, query)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.out.json(res.Raw)
			}
			if !res.Success {
				return responseError(res.Message, "Could not load the leaderboard.")
			}
			if len(res.Data) == 0 {
				a.out.line("No entries")
				return nil
			}
			return a.out.table("RANK\tNAME\tCREDITS\tEVENTS", leaderboardRows(res.Data, true))
		},
	}

	cmd.Flags().StringVar(&query.Period, "period", client.PeriodSemester, "MONTHLY, SEMESTER, YEARLY or ALL_TIME")
	cmd.Flags().IntVar(&query.Year, "year", 0, "year of the period")
	cmd.Flags().IntVar(&query.Month, "month", 0, "month of a MONTHLY period")
	cmd.Flags().IntVar(&query.Limit, "limit", 10, "number of entries")
	cmd.Flags().BoolVar(&mine, "me", false, "show only your own rank")
	return cmd
}

func newEventsCommand(a *app) *cobra.Command {
	var filters client.EventFilters
	var mine bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx := a.context(cmd)

			var (
				res *client.Response[[]client.Event]
				err error
			)
			if mine {
				res, err = a.client.Events.GetUserEvents(ctx)
			} else {
				res, err = a.client.Events.GetAll(ctx, filters)
			}
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.out.json(res.Raw)
			}
			if !res.Success {
				return responseError(res.Message, "Could not load events.")
			}
			if len(res.Data) == 0 {
				a.out.line("No events")
				return nil
			}
			return a.out.table("ID\tTITLE\tDATE\tVENUE\tSTATUS\tCREDITS", eventRows(res.Data, true))
		},
	}

	cmd.Flags().StringVar(&filters.Status, "status", "", "filter by status, e.g. UPCOMING")
	cmd.Flags().IntVar(&filters.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&filters.Limit, "limit", 0, "events per page")
	cmd.Flags().BoolVar(&mine, "mine", false, "list the events you registered for")
	return cmd
}

func newRSVPCommand(a *app) *cobra.Command {
	var cancel bool

	cmd := &cobra.Command{
		Use:   "rsvp EVENT_ID",
		Short: "Register for an event, or cancel with --cancel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			eventID, err := parseID("event id", args[0])
			if err != nil {
				return err
			}
			ctx := a.context(cmd)

			if cancel {
				res, err := a.client.RSVP.Cancel(ctx, eventID)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return a.out.json(res.Raw)
				}
				if !res.Success {
					return responseError(res.Message, "Could not cancel the registration.")
				}
				a.out.line("Registration for event %d cancelled", eventID)
				return nil
			}

			res, err := a.client.RSVP.Create(ctx, eventID)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.out.json(res.Raw)
			}
			if !res.Success {
				return responseError(res.Message, "Could not register for the event.")
			}
			a.out.line("Registered for event %d", eventID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cancel, "cancel", false, "cancel the registration")
	return cmd
}

func newAttendCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attend SESSION_ID CODE",
		Short: "Mark attendance with the code shown at the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			sessionID, err := parseID("session id", args[0])
			if err != nil {
				return err
			}

			res, err := a.client.Attendance.MarkAttendance(a.context(cmd), sessionID, strings.TrimSpace(args[1]))
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.out.json(res.Raw)
			}
			if !res.Success {
				return responseError(res.Message, "Could not mark attendance.")
			}
			a.out.line("Attendance marked for session %d", sessionID)
			return nil
		},
	}
}

func newNotificationsCommand(a *app) *cobra.Command {
	var (
		unread  bool
		limit   int
		readAll bool
	)

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx := a.context(cmd)

			if readAll {
				res, err := a.client.Notifications.MarkAllAsRead(ctx)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return a.out.json(res.Raw)
				}
				if !res.Success {
					return responseError(res.Message, "Could not mark notifications as read.")
				}
				a.out.line("All notifications marked as read")
				return nil
			}

			filters := client.NotificationFilters{Limit: limit}
			if unread {
				read := false
				filters.Read = &read
			}

			res, err := a.client.Notifications.GetAll(ctx, filters)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.out.json(res.Raw)
			}
			if !res.Success {
				return responseError(res.Message, "Could not load notifications.")
			}
			if len(res.Data) == 0 {
				a.out.line("No notifications")
				return nil
			}

			rows := make([][]any, 0, len(res.Data))
			for _, n := range res.Data {
				mark := ""
				if !n.Read {
					mark = "*"
				}
				rows = append(rows, []any{mark, n.ID, n.Title, helpers.FormatDate(n.CreatedAt)})
			}
			return a.out.table("\tID\tTITLE\tDATE", rows)
		},
	}

	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of notifications")
	cmd.Flags().BoolVar(&readAll, "read-all", false, "mark every notification as read")
	return cmd
}

func newAnnouncementsCommand(a *app) *cobra.Command {
	var (
		filters client.AnnouncementFilters
		readID  int
	)

	cmd := &cobra.Command{
		Use:   "announcements",
		Short: "List announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx := a.context(cmd)

			if readID != 0 {
				res, err := a.client.Announcements.MarkAsRead(ctx, readID)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return a.out.json(res.Raw)
				}
				if !res.Success {
					return responseError(res.Message, "Could not mark the announcement as read.")
				}
				a.out.line("Announcement %d marked as read", readID)
				return nil
			}

			filters.Priority = strings.ToUpper(filters.Priority)
			res, err := a.client.Announcements.GetAll(ctx, filters)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.out.json(res.Raw)
			}
			if !res.Success {
				return responseError(res.Message, "Could not load announcements.")
			}
			if len(res.Data) == 0 {
				a.out.line("No announcements")
				return nil
			}

			rows := make([][]any, 0, len(res.Data))
			for _, an := range res.Data {
				mark := ""
				if !an.IsRead {
					mark = "*"
				}
				rows = append(rows, []any{mark, an.ID, helpers.Label(an.Priority), an.Title})
			}
			return a.out.table("\tID\tPRIORITY\tTITLE", rows)
		},
	}

	cmd.Flags().StringVar(&filters.Priority, "priority", "", "filter by priority, e.g. HIGH")
	cmd.Flags().IntVar(&filters.Limit, "limit", 0, "maximum number of announcements")
	cmd.Flags().IntVar(&readID, "read", 0, "mark the announcement with this id as read")
	return cmd
}
