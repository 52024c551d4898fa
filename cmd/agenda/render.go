package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/feed"
)

const displayLayout = "02/01/2006 15:04"

// render prints the visible rows of p as a table, then a hint when more
// rows are hidden.
func render(out io.Writer, view feed.View, p *feed.Pager) error {
	rows := p.Visible()
	if len(rows) == 0 {
		_, err := fmt.Fprintf(out, "No events in %s.\n", view)
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tOUTBOUND\tRETURN\tDESTINATION\tSTATUS\tRIDERS")
	for _, e := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			e.Code, legCell(e.Outbound), legCell(e.Return), e.Destination.Name, e.Status.Label(), e.Passengers.Len())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.HasMore() {
		_, err := fmt.Fprintln(out, "More events available: rerun with --more to see them.")
		return err
	}
	return nil
}

// legCell shows the leg's wall-clock time as entered; it is never converted.
func legCell(l *domain.Leg) string {
	if l == nil {
		return "-"
	}
	return l.ScheduledAt.Format(displayLayout)
}
