package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"cryptoanalyzer/internal/dashboard"
)

// terminal renders snapshots as aligned tables.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out, now: time.Now}
}

func (t *terminal) Snapshot(s dashboard.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n== Watchlist (%s UTC) ==\n", s.RefreshedAt.Format("2006-01-02 15:04:05"))
	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\t24H\tVOLUME\tUPDATED\t")
	for _, r := range s.Rows {
		sym := r.Symbol
		if r.Stale {
			sym += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", sym, r.Price, r.Change24h, r.Volume, r.Updated)
	}
	_ = tw.Flush()
	for _, r := range s.Rows {
		if r.Error != "" {
			fmt.Fprintf(t.out, "  ! %s: %s\n", r.Symbol, r.Error)
		}
	}

	if s.TopError != "" {
		fmt.Fprintf(t.out, "\n== Top ==\n  ! %s\n", s.TopError)
	} else if len(s.Top) > 0 {
		fmt.Fprintf(t.out, "\n== Top %d ==\n", len(s.Top))
		tw = tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tSYMBOL\tNAME\tPRICE\t24H\tMARKET CAP\tVOLUME\t")
		for _, r := range s.Top {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n", r.Rank, r.Symbol, r.Name, r.Price, r.Change24h, r.MarketCap, r.Volume)
		}
		_ = tw.Flush()
	}

	if !s.NextRefresh.IsZero() {
		left := s.NextRefresh.Sub(t.now()).Round(time.Second)
		if left < 0 {
			left = 0
		}
		fmt.Fprintf(t.out, "\nnext refresh in %s. type 'help' for commands.\n", left)
	}
}

func (t *terminal) Detail(d dashboard.Detail) {
	t.mu.Lock()
	defer t.mu.Unlock()

	title := d.Symbol
	if d.Name != "" {
		title = fmt.Sprintf("%s (%s)", d.Name, d.Symbol)
	}
	if d.Stale {
		title += " [stale]"
	}
	fmt.Fprintf(t.out, "\n== %s ==\n", title)
	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Price\t%s\t\n", d.Price)
	for _, m := range d.Changes {
		fmt.Fprintf(tw, "%s\t%s\t\n", m.Label, m.Value)
	}
	fmt.Fprintf(tw, "Volume 24h\t%s\t\n", d.Volume)
	for _, m := range d.Supplies {
		fmt.Fprintf(tw, "%s\t%s\t\n", m.Label, m.Value)
	}
	fmt.Fprintf(tw, "Last updated\t%s\t\n", d.LastUpdated)
	_ = tw.Flush()
}

func (t *terminal) Message(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, msg)
}

func (t *terminal) Error(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, "error: "+strings.TrimSpace(err.Error()))
}
