package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nanofi/nanofi/internal/applications"
	"github.com/nanofi/nanofi/internal/common"
)

// Submit files a vault application as the logged-in user. With an empty
// file the form is filled in interactively.
func (a *App) Submit(ctx context.Context, file string) error {
	var (
		fd  applications.FormData
		err error
	)
	if file != "" {
		fd, err = readFormFile(file)
	} else {
		fd, err = promptForm(a.reader, a.out)
	}
	if err != nil {
		return err
	}

	id, err := a.review.Submit(ctx, fd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Submitted %s\n", id)
	return nil
}

// List prints applications, optionally only those with the given status.
func (a *App) List(ctx context.Context, status string) error {
	var apps []applications.Application
	if status == "" {
		apps = a.apps.ListAll(ctx)
	} else {
		st := applications.Status(status)
		if !st.Valid() {
			return fmt.Errorf("%w: list [pending|approved|rejected]", errUsage)
		}
		apps = a.apps.ListByStatus(ctx, st)
	}

	if len(apps) == 0 {
		fmt.Fprintln(a.out, "No applications")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSUBMITTED BY\tSUBMITTED\tTITLE")
	for _, app := range apps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			app.ID, app.Status, app.SubmittedBy, app.SubmittedAt.Format(time.DateOnly), title(app))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	st := a.apps.Stats(ctx)
	fmt.Fprintf(a.out, "\n%d total: %d pending, %d approved, %d rejected\n", st.Total, st.Pending, st.Approved, st.Rejected)
	return nil
}

// Show prints one application with all of its form sections.
func (a *App) Show(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: show <id>", errUsage)
	}
	app, ok := a.apps.GetByID(ctx, id)
	if !ok {
		return fmt.Errorf("application %s: %w", id, common.ErrorNotFound)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", app.ID)
	fmt.Fprintf(tw, "Status:\t%s\n", app.Status)
	fmt.Fprintf(tw, "Submitted by:\t%s\n", app.SubmittedBy)
	fmt.Fprintf(tw, "Submitted at:\t%s\n", app.SubmittedAt.Format(time.RFC3339))
	if app.ReviewedAt != nil {
		fmt.Fprintf(tw, "Reviewed by:\t%s\n", app.ReviewedBy)
		fmt.Fprintf(tw, "Reviewed at:\t%s\n", app.ReviewedAt.Format(time.RFC3339))
	}
	if app.ReviewNotes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", app.ReviewNotes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	known, unknown, err := applications.Unwrap(app.FormData)
	if err != nil {
		// still show the raw payload
		a.logger.Warn(ctx, "form data not decodable", "id", app.ID, "error", err)
		known, unknown = nil, app.FormData
	}
	for _, s := range known {
		fmt.Fprintf(a.out, "\n[%s]\n", s.Kind())
		printSection(a.out, s)
	}
	kinds := make([]string, 0, len(unknown))
	for k := range unknown {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(a.out, "\n[%s]\n%s\n", k, unknown[applications.SectionKind(k)])
	}
	return nil
}

func printSection(w io.Writer, s applications.SectionPayload) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "  %s:\t%s\n", k, v)
		}
	}
	switch v := s.(type) {
	case applications.InventorInfo:
		row("Name", v.Name)
		row("Email", v.Email)
		row("Organization", v.Organization)
		row("Country", v.Country)
	case applications.PatentInfo:
		row("Title", v.Title)
		row("Patent number", v.PatentNumber)
		row("Filing date", v.FilingDate)
		row("Jurisdiction", v.Jurisdiction)
		row("Category", v.Category)
		row("Abstract", v.Abstract)
	case applications.ValuationInfo:
		if !v.EstimatedValue.IsZero() {
			row("Estimated value", v.EstimatedValue.StringFixed(2)+" "+v.Currency)
		}
		if !v.RequestedAmount.IsZero() {
			row("Requested", v.RequestedAmount.StringFixed(2)+" "+v.Currency)
		}
		row("Methodology", v.Methodology)
	}
}

func title(app applications.Application) string {
	p, ok, err := applications.Section[applications.PatentInfo](app.FormData)
	if !ok || err != nil {
		return "-"
	}
	return p.Title
}

func (a *App) Approve(ctx context.Context, id, notes string) error {
	if id == "" {
		return fmt.Errorf("%w: approve <id> [notes]", errUsage)
	}
	if err := a.review.Approve(ctx, id, notes); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Approved %s\n", id)
	return nil
}

func (a *App) Reject(ctx context.Context, id, notes string) error {
	if id == "" {
		return fmt.Errorf("%w: reject <id> [notes]", errUsage)
	}
	if err := a.review.Reject(ctx, id, notes); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Rejected %s\n", id)
	return nil
}

// Seed loads the demo applications into an empty profile.
func (a *App) Seed(ctx context.Context) error {
	seeded, err := a.apps.SeedDemoData(ctx)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(a.out, "Applications already present, nothing seeded")
		return nil
	}
	fmt.Fprintf(a.out, "Seeded %d demo applications\n", len(a.apps.ListAll(ctx)))
	return nil
}

func joinNotes(words []string) string {
	return strings.Join(words, " ")
}
