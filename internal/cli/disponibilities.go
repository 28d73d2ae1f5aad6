package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dspworks/dispatch/backend/internal/dispatch"
	"github.com/dspworks/dispatch/backend/internal/domain"
)

// board 是按天查看记录时需要的全部数据
type board struct {
	store     *dispatch.RecordStore
	shifts    []*domain.Shift
	employees []*domain.Employee
}

func loadBoard(ctx context.Context, app *App, load func(store *dispatch.RecordStore) error) (*board, error) {
	b := &board{store: dispatch.NewRecordStore(app.Backend)}
	if err := load(b.store); err != nil {
		return nil, err
	}

	var err error
	if b.shifts, err = app.Backend.Shifts(ctx); err != nil {
		return nil, err
	}
	if b.employees, err = app.Backend.Employees(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *board) print(w io.Writer, records []*domain.Disponibility) {
	shifts := make(map[string]string, len(b.shifts))
	for _, s := range b.shifts {
		shifts[s.ID] = s.Name
	}
	names := employeeNames(b.employees)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDAY\tSHIFT\tEMPLOYEE\tDECISION\tCONFIRMATION\tPRESENCE\tSEEN")
	fmt.Fprintln(tw, "--\t---\t-----\t--------\t--------\t------------\t--------\t----")
	for _, d := range dispatch.SortForDisplay(records, b.shifts, b.employees) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID,
			d.SelectedDay,
			orDash(shifts[d.ShiftID]),
			orDash(names[d.EmployeeID]),
			d.Decisions,
			confirmationLabel(d),
			presenceLabel(d.Presence),
			seenLabel(d.Seen),
		)
	}
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func confirmationLabel(d *domain.Disponibility) string {
	if d.IsSuspended() {
		return color.New(color.FgRed).Sprint("suspended")
	}
	switch d.Confirmation {
	case domain.ConfirmationConfirmed:
		return color.New(color.FgGreen).Sprint("confirmed")
	case domain.ConfirmationCanceled:
		return color.New(color.FgYellow).Sprint("canceled")
	}
	return "-"
}

func presenceLabel(p *domain.Presence) string {
	if p == nil {
		return "-"
	}
	return string(*p)
}

func seenLabel(seen *bool) string {
	if seen == nil || !*seen {
		return "-"
	}
	return "✓"
}

func dayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "List the availabilities of a day, grouped by shift and score card",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			day, err := parseDate(strings.Join(args, ""))
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}

			ctx := cmd.Context()
			b, err := loadBoard(ctx, app, func(store *dispatch.RecordStore) error {
				return store.LoadByDay(ctx, day)
			})
			if err != nil {
				return app.fail(ctx, app.platform(), err)
			}

			if b.store.Len() == 0 {
				fmt.Fprintln(app.Out, app.translator().T("empty_day"))
				return nil
			}
			b.print(app.Out, b.store.Records())
			return nil
		},
	}
}

func employeeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee [employee-id]",
		Short: "List the availabilities of an employee from a date on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			afterFlag, _ := cmd.Flags().GetString("after")
			after, err := parseDate(afterFlag)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}

			ctx := cmd.Context()
			b, err := loadBoard(ctx, app, func(store *dispatch.RecordStore) error {
				return store.LoadByEmployeeAfter(ctx, args[0], after)
			})
			if err != nil {
				return app.fail(ctx, app.platform(), err)
			}

			if b.store.Len() == 0 {
				fmt.Fprintln(app.Out, app.translator().T("disponibilities_empty"))
				return nil
			}
			b.print(app.Out, b.store.Records())
			return nil
		},
	}

	cmd.Flags().String("after", "today", "First day to include (YYYY-MM-DD)")
	return cmd
}

// parseDecision 解析 id=confirmed 形式的参数
func parseDecision(s string) (string, domain.Confirmation, error) {
	id, status, ok := strings.Cut(s, "=")
	if !ok || id == "" {
		return "", "", fmt.Errorf("invalid decision %q\nHint: use <record-id>=confirmed or <record-id>=canceled", s)
	}
	return id, domain.Confirmation(status), nil
}

func confirmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm [YYYY-MM-DD] [record-id=confirmed|canceled...]",
		Short: "Stage confirmation decisions for a day and submit them in one batch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			day, err := parseDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			allAccepted, _ := cmd.Flags().GetString("all-accepted")

			ctx := cmd.Context()
			p := app.platform()

			store := dispatch.NewRecordStore(app.Backend)
			if err := store.LoadByDay(ctx, day); err != nil {
				return app.fail(ctx, p, err)
			}
			batch := dispatch.NewBatchProcessor(app.Backend, store)

			if allAccepted != "" {
				for _, d := range store.Records() {
					if d.Decisions != domain.DecisionAccepted || d.Confirmation != domain.ConfirmationUnset {
						continue
					}
					if err := batch.StageDecision(d.ID, domain.Confirmation(allAccepted)); err != nil {
						return fmt.Errorf("invalid --all-accepted value: %w", err)
					}
				}
			}
			for _, arg := range args[1:] {
				id, status, err := parseDecision(arg)
				if err != nil {
					return err
				}
				if _, ok := store.Get(id); !ok {
					return fmt.Errorf("record %s is not on %s", id, domain.FormatDay(day))
				}
				if err := batch.StageDecision(id, status); err != nil {
					return fmt.Errorf("invalid decision %q: %w", arg, err)
				}
			}

			if len(batch.Staged()) > 0 {
				ok, err := p.Confirm(ctx, fmt.Sprintf("Submit %d decision(s) for %s?", len(batch.Staged()), domain.FormatDay(day)))
				if err != nil {
					return err
				}
				if !ok {
					return app.fail(ctx, p, dispatch.ErrCanceled)
				}
			}

			n, err := batch.SubmitBatch(ctx)
			if err != nil {
				return app.fail(ctx, p, err)
			}
			app.success(app.translator().T("batch_submitted", strconv.Itoa(n)))
			return nil
		},
	}

	cmd.Flags().String("all-accepted", "", "Stage this status (confirmed or canceled) for every accepted, undecided record")
	return cmd
}

func watchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [YYYY-MM-DD]",
		Short: "Show a day and follow presence and seen updates live",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			if app.Events == nil {
				return errors.New("live updates are not configured\nHint: export DISPATCH_EVENTS_DSN")
			}
			day, err := parseDate(strings.Join(args, ""))
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b, err := loadBoard(ctx, app, func(store *dispatch.RecordStore) error {
				return store.LoadByDay(ctx, day)
			})
			if err != nil {
				return app.fail(ctx, app.platform(), err)
			}
			b.print(app.Out, b.store.Records())

			deliveries, closeEvents, err := app.Events(ctx)
			if err != nil {
				return fmt.Errorf("failed to subscribe to live updates: %w", err)
			}
			defer closeEvents()

			names := employeeNames(b.employees)
			listener := dispatch.NewListener(b.store, app.Session)
			listener.OnApply = func(evt domain.DisponibilityEvent) {
				d, ok := b.store.Get(evt.ID)
				if !ok {
					return
				}
				fmt.Fprintf(app.Out, "%s %s %s: presence=%s seen=%s\n",
					color.New(color.FgCyan).Sprint("↻"),
					d.ID,
					orDash(names[d.EmployeeID]),
					presenceLabel(d.Presence),
					seenLabel(d.Seen),
				)
			}

			fmt.Fprintln(app.Out, "Watching for updates... (CTRL+C to stop)")
			if err := listener.Run(ctx, deliveries); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
