package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"carcompare-api/internal/model"
	"carcompare-api/internal/service"
)

var (
	good    = color.New(color.FgGreen, color.Bold)
	fair    = color.New(color.FgYellow)
	poor    = color.New(color.FgRed)
	heading = color.New(color.FgCyan, color.Bold)
	faint   = color.New(color.Faint)
)

func scoreColor(score int) *color.Color {
	switch {
	case score >= 75:
		return good
	case score >= 50:
		return fair
	default:
		return poor
	}
}

func formatPrice(price int) string {
	if price <= 0 {
		return "-"
	}
	s := fmt.Sprintf("%d", price)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func printResults(w io.Writer, results []model.VehicleSpec) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no cars found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tCAR\tHP\tL/100KM\tPRICE\tTRACTION\tSOURCE")
	for _, r := range results {
		score := r.MatchScore()
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%.1f\t%s\t%s\t%s\n",
			scoreColor(score).Sprintf("%3d", score),
			r.ID,
			r.Brand, r.Model,
			r.HP,
			r.Consumption,
			formatPrice(r.Price),
			r.Traction,
			r.Source,
		)
	}
	_ = tw.Flush()
}

func printSources(w io.Writer, resp *model.SearchResponse) {
	parts := make([]string, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		if s.Status == "ok" {
			parts = append(parts, fmt.Sprintf("%s %d", s.Name, s.Count))
		} else {
			parts = append(parts, poor.Sprintf("%s failed", s.Name))
		}
	}
	fmt.Fprintln(w, faint.Sprintf("sources: %s", strings.Join(parts, ", ")))
	if resp.AllSourcesFailed {
		fmt.Fprintln(w, poor.Sprint("every source failed, results may be missing"))
	}
}

func printComparison(w io.Writer, selection []model.VehicleSpec, cmp *service.Comparison) {
	heading.Fprintln(w, "Winners")
	winners := []struct {
		label string
		spec  model.VehicleSpec
	}{
		{"overall", cmp.Ranking.Overall},
		{"eco", cmp.Ranking.Eco},
		{"sport", cmp.Ranking.Sport},
		{"family", cmp.Ranking.Family},
	}
	for _, wn := range winners {
		fmt.Fprintf(w, "  %-8s %s\n", wn.label, good.Sprintf("%s %s", wn.spec.Brand, wn.spec.Model))
	}

	fmt.Fprintln(w)
	heading.Fprintln(w, "Profile")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"METRIC"}
	for _, s := range selection {
		header = append(header, s.ID)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range cmp.Radar {
		cells := []string{row.Metric}
		for _, id := range row.Order {
			cells = append(cells, scoreColor(row.Values[id]).Sprintf("%d", row.Values[id]))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

func printPreferences(w io.Writer, p model.Preferences) {
	fmt.Fprintf(w, "minPower=%d maxConsumption=%.1f maxPrice=%d traction=%s\n",
		p.MinPower, p.MaxConsumption, p.MaxPrice, p.PreferredTraction)
}
