package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dspworks/dispatch/backend/internal/dispatch"
	"github.com/dspworks/dispatch/backend/internal/domain"
)

func (a *App) warningManager(p dispatch.Platform) *dispatch.WarningManager {
	store := dispatch.NewRecordStore(a.Backend)
	coordinator := dispatch.NewSuspensionCoordinator(a.Backend, store, a.Session)
	return dispatch.NewWarningManager(a.Backend, coordinator, p, a.translator())
}

// loadWarnings 加载员工的警告，没有任何警告时服务器可能返回 404
func loadWarnings(ctx context.Context, m *dispatch.WarningManager, employeeID string) error {
	if err := m.Load(ctx, employeeID); err != nil && !errors.Is(err, dispatch.ErrNotFound) {
		return err
	}
	return nil
}

func addDraftFlags(cmd *cobra.Command) {
	cmd.Flags().String("template", "", "Template ID used to prefill the form")
	cmd.Flags().StringP("raison", "r", "", "Reason")
	cmd.Flags().StringP("description", "d", "", "Description")
	cmd.Flags().StringP("severity", "s", "", "Severity (low, medium, high)")
	cmd.Flags().String("link", "", "Link to a related document")
	cmd.Flags().String("date", "", "Date of the event (RFC3339, defaults to now)")
	cmd.Flags().Bool("signature", false, "The employee signed the warning")
	cmd.Flags().String("photo", "", "Path of a photo to attach as evidence")
}

// applyDraftFlags 只覆盖命令行中显式给出的字段
func applyDraftFlags(cmd *cobra.Command, d *dispatch.Draft) {
	flags := cmd.Flags()
	if flags.Changed("raison") {
		d.Raison, _ = flags.GetString("raison")
	}
	if flags.Changed("description") {
		d.Description, _ = flags.GetString("description")
	}
	if flags.Changed("severity") {
		severity, _ := flags.GetString("severity")
		d.Severity = domain.Severity(severity)
	}
	if flags.Changed("link") {
		d.Link, _ = flags.GetString("link")
	}
	if flags.Changed("date") {
		d.Date, _ = flags.GetString("date")
	}
	if flags.Changed("signature") {
		d.Signature, _ = flags.GetBool("signature")
	}
	if flags.Changed("type") {
		t, _ := flags.GetString("type")
		d.Type = domain.WarningType(t)
	}
}

// prepareDraft 依次应用模板和命令行参数，得到最终的表单
func prepareDraft(cmd *cobra.Command, m *dispatch.WarningManager, base dispatch.Draft) error {
	m.SetDraft(base)

	if templateID, _ := cmd.Flags().GetString("template"); templateID != "" {
		if err := m.LoadTemplates(cmd.Context()); err != nil {
			return err
		}
		if err := m.ApplyTemplate(templateID); err != nil {
			return err
		}
	}

	draft := m.Draft()
	applyDraftFlags(cmd, &draft)
	m.SetDraft(draft)
	return nil
}

func printWarning(app *App, w *domain.Warning) {
	fmt.Fprintf(app.Out, "  ID: %s\n", w.ID)
	fmt.Fprintf(app.Out, "  Type: %s\n", w.Type)
	fmt.Fprintf(app.Out, "  Raison: %s\n", w.Raison)
	if w.Severity != "" {
		fmt.Fprintf(app.Out, "  Severity: %s\n", w.Severity)
	}
	if w.Type == domain.WarningTypeSuspension {
		fmt.Fprintf(app.Out, "  Suspended shifts: %d\n", w.SusNombre)
	}
	if w.Photo != "" {
		fmt.Fprintf(app.Out, "  Photo: %s\n", w.Photo)
	}
}

func warningsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warnings",
		Short: "Manage the warnings of an employee",
	}

	listCmd := &cobra.Command{
		Use:   "list [employee-id]",
		Short: "List the warnings of an employee, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			p := app.platform()
			m := app.warningManager(p)
			if err := loadWarnings(ctx, m, args[0]); err != nil {
				return app.fail(ctx, p, err)
			}

			warnings := m.Warnings()
			if len(warnings) == 0 {
				fmt.Fprintln(app.Out, "No warnings found")
				return nil
			}

			tw := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tSEVERITY\tRAISON\tSHIFTS\tPHOTO")
			fmt.Fprintln(tw, "--\t----\t----\t--------\t------\t------\t-----")
			for _, w := range warnings {
				typ := string(w.Type)
				if w.Type == domain.WarningTypeSuspension {
					typ = color.New(color.FgRed).Sprint(typ)
				}
				photo := "-"
				if w.Photo != "" {
					photo = "✓"
				}
				shifts := "-"
				if w.Type == domain.WarningTypeSuspension {
					shifts = strconv.Itoa(w.SusNombre)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", w.ID, w.Date, typ, orDash(string(w.Severity)), w.Raison, shifts, photo)
			}
			tw.Flush()
			return nil
		},
	}

	createCmd := &cobra.Command{
		Use:   "create [employee-id]",
		Short: "Record a new warning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			p := app.platform()
			m := app.warningManager(p)

			if err := loadWarnings(ctx, m, args[0]); err != nil {
				return app.fail(ctx, p, err)
			}
			if err := prepareDraft(cmd, m, dispatch.Draft{Type: domain.WarningTypeWarning}); err != nil {
				return app.fail(ctx, p, err)
			}
			if records, _ := cmd.Flags().GetStringSlice("record"); len(records) > 0 {
				m.Select(records...)
			}

			photoPath, _ := cmd.Flags().GetString("photo")
			photo, closePhoto, err := openPhoto(photoPath)
			if err != nil {
				return err
			}
			defer closePhoto()

			created, err := m.Create(ctx, photo)
			if err != nil {
				return app.fail(ctx, p, err)
			}
			app.success(app.translator().T("warning_saved"))
			printWarning(app, created)
			return nil
		},
	}
	addDraftFlags(createCmd)
	createCmd.Flags().StringP("type", "t", "warning", "Warning type (warning, suspension)")
	createCmd.Flags().StringSlice("record", nil, "Availability IDs to suspend (suspension only)")

	updateCmd := &cobra.Command{
		Use:   "update [employee-id] [warning-id]",
		Short: "Edit a warning; fields not given are kept",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			p := app.platform()
			m := app.warningManager(p)

			if err := loadWarnings(ctx, m, args[0]); err != nil {
				return app.fail(ctx, p, err)
			}
			if err := m.Edit(args[1]); err != nil {
				return app.fail(ctx, p, err)
			}
			if err := prepareDraft(cmd, m, m.Draft()); err != nil {
				return app.fail(ctx, p, err)
			}

			photoPath, _ := cmd.Flags().GetString("photo")
			removePhoto, _ := cmd.Flags().GetBool("remove-photo")
			photo, closePhoto, err := openPhoto(photoPath)
			if err != nil {
				return err
			}
			defer closePhoto()

			updated, err := m.Update(ctx, args[1], m.Draft(), photo, removePhoto)
			if err != nil {
				return app.fail(ctx, p, err)
			}
			app.success(app.translator().T("warning_saved"))
			printWarning(app, updated)
			return nil
		},
	}
	addDraftFlags(updateCmd)
	updateCmd.Flags().StringP("type", "t", "", "Warning type (warning, suspension)")
	updateCmd.Flags().Bool("remove-photo", false, "Remove the current photo")

	deleteCmd := &cobra.Command{
		Use:   "delete [employee-id] [warning-id]",
		Short: "Delete a warning and its photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			p := app.platform()
			m := app.warningManager(p)

			if err := loadWarnings(ctx, m, args[0]); err != nil {
				return app.fail(ctx, p, err)
			}
			if err := m.Delete(ctx, args[1]); err != nil {
				return app.fail(ctx, p, err)
			}
			app.success(app.translator().T("warning_deleted"))
			return nil
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(createCmd)
	cmd.AddCommand(updateCmd)
	cmd.AddCommand(deleteCmd)
	return cmd
}

func suspendCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suspend [employee-id] [record-id...]",
		Short: "Record a suspension and suspend the given shifts",
		Long: `suspend records a suspension warning for the employee, then flags the given
availabilities as suspended. If flagging fails the warning is deleted again.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			p := app.platform()
			m := app.warningManager(p)
			employeeID, recordIDs := args[0], args[1:]

			if err := loadWarnings(ctx, m, employeeID); err != nil {
				return app.fail(ctx, p, err)
			}
			if err := prepareDraft(cmd, m, dispatch.Draft{}); err != nil {
				return app.fail(ctx, p, err)
			}
			draft := m.Draft()
			draft.Type = domain.WarningTypeSuspension
			m.SetDraft(draft)
			m.Select(recordIDs...)

			photoPath, _ := cmd.Flags().GetString("photo")
			photo, closePhoto, err := openPhoto(photoPath)
			if err != nil {
				return err
			}
			defer closePhoto()

			created, err := m.Create(ctx, photo)
			if err != nil {
				var partial *dispatch.PartialFailureError
				if errors.As(err, &partial) {
					fmt.Fprintf(app.Err, "warning %s may still exist on the server\n", partial.WarningID)
				}
				return app.fail(ctx, p, err)
			}
			app.success(app.translator().T("suspension_done", strconv.Itoa(created.SusNombre)))
			printWarning(app, created)
			return nil
		},
	}
	addDraftFlags(cmd)
	return cmd
}

func templatesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the warning templates of the DSP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			p := app.platform()
			m := app.warningManager(p)
			if err := m.LoadTemplates(ctx); err != nil {
				return app.fail(ctx, p, err)
			}

			templates := m.Templates()
			if len(templates) == 0 {
				fmt.Fprintln(app.Out, "No templates found")
				return nil
			}

			tw := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSEVERITY\tRAISON")
			fmt.Fprintln(tw, "--\t----\t--------\t------")
			for _, t := range templates {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Type, orDash(string(t.Severity)), t.Raison)
			}
			tw.Flush()
			return nil
		},
	}
}
