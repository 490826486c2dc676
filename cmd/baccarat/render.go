package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/yourusername/baccarat-tracker/internal/analyzer"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// palette holds styles bound to one output; non-terminal writers get plain text
type palette struct {
	header lipgloss.Style
	player lipgloss.Style
	banker lipgloss.Style
	tie    lipgloss.Style
	muted  lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		player: r.NewStyle().Foreground(lipgloss.Color("12")),
		banker: r.NewStyle().Foreground(lipgloss.Color("9")),
		tie:    r.NewStyle().Foreground(lipgloss.Color("10")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (p palette) winner(w models.Winner, text string) string {
	switch w {
	case models.WinnerPlayer:
		return p.player.Render(text)
	case models.WinnerBanker:
		return p.banker.Render(text)
	default:
		return p.tie.Render(text)
	}
}

func (a *app) render(w io.Writer, v interface{}, text func(io.Writer) error) error {
	if a.output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

func (a *app) renderCounters(w io.Writer, message string) error {
	shoe, dealer := a.tracker.Counters()
	counters := map[string]int{"currentShoe": shoe, "currentDealer": dealer}
	return a.render(w, counters, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s (shoe %d, dealer %d)\n", message, shoe, dealer)
		return err
	})
}

func letter(w models.Winner) string {
	switch w {
	case models.WinnerPlayer:
		return "P"
	case models.WinnerBanker:
		return "B"
	default:
		return "T"
	}
}

func scores(rec models.OutcomeRecord) string {
	if !rec.HasScores() {
		return "-"
	}
	return fmt.Sprintf("%d-%d", *rec.PlayerScore, *rec.BankerScore)
}

func predictionResult(rec models.OutcomeRecord) (string, string) {
	if rec.PredictedWinner == nil {
		return "-", "-"
	}
	result := "-"
	if rec.IsCorrectPrediction != nil {
		result = "miss"
		if *rec.IsCorrectPrediction {
			result = "hit"
		}
	}
	return string(*rec.PredictedWinner), result
}

func renderRecorded(w io.Writer, rec models.OutcomeRecord, next models.Forecast) error {
	p := newPalette(w)
	fmt.Fprintf(w, "Recorded %s (%s) on shoe %d, dealer %d [%s]\n",
		p.winner(rec.Winner, string(rec.Winner)), scores(rec), rec.ShoeNumber, rec.DealerNumber, rec.ID)
	if predicted, result := predictionResult(rec); predicted != "-" {
		fmt.Fprintf(w, "Forecast was %s: %s\n", predicted, result)
	}
	_, err := fmt.Fprintf(w, "Next: %s\n", forecastSummary(next))
	return err
}

func forecastSummary(f models.Forecast) string {
	if !f.HasPrediction() {
		return "insufficient data"
	}
	return fmt.Sprintf("%s (%s%%)", f.Prediction, f.Confidence.StringFixed(1))
}

func renderHistory(w io.Writer, records []models.OutcomeRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No hands recorded")
		return err
	}

	p := newPalette(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tWINNER\tSCORE\tSHOE\tDEALER\tPREDICTED\tRESULT\tID")
	for _, rec := range records {
		predicted, result := predictionResult(rec)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			rec.Time().Format("15:04:05"),
			p.winner(rec.Winner, string(rec.Winner)),
			scores(rec),
			rec.ShoeNumber,
			rec.DealerNumber,
			predicted,
			result,
			p.muted.Render(rec.ID))
	}
	return tw.Flush()
}

func renderStatistics(w io.Writer, s analyzer.Statistics) error {
	p := newPalette(w)
	fmt.Fprintln(w, p.header.Render("Statistics"))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Hands\t%d\n", s.Total)
	fmt.Fprintf(tw, "Player\t%d\t%s%%\n", s.PlayerWins, s.PlayerWinRate.StringFixed(1))
	fmt.Fprintf(tw, "Banker\t%d\t%s%%\n", s.BankerWins, s.BankerWinRate.StringFixed(1))
	fmt.Fprintf(tw, "Tie\t%d\t%s%%\n", s.Ties, s.TieRate.StringFixed(1))
	fmt.Fprintf(tw, "Current streak\t%s\n", streakText(s.CurrentStreak))
	fmt.Fprintf(tw, "Longest streak\t%s\n", streakText(s.LongestStreak))
	fmt.Fprintf(tw, "Average score\tP %s\tB %s\n", s.AvgPlayerScore.StringFixed(2), s.AvgBankerScore.StringFixed(2))
	fmt.Fprintf(tw, "Shoes played\t%d\n", s.ShoesPlayed)
	fmt.Fprintf(tw, "Prediction accuracy\t%d/%d\t%s%%\n", s.CorrectPredictions, s.TotalPredictions, s.PredictionAccuracy.StringFixed(1))
	return tw.Flush()
}

func streakText(s analyzer.Streak) string {
	if s.Count == 0 {
		return "-"
	}
	return fmt.Sprintf("%s x%d", s.Side, s.Count)
}

func renderPatterns(w io.Writer, patterns []models.Pattern) error {
	p := newPalette(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", p.header.Render("PATTERN"), p.header.Render("STRENGTH"), p.header.Render("DESCRIPTION"))
	for _, pat := range patterns {
		fmt.Fprintf(tw, "%s\t%.0f\t%s\n", pat.Type, pat.Strength, pat.Description)
	}
	return tw.Flush()
}

func renderForecast(w io.Writer, f models.Forecast) error {
	p := newPalette(w)
	if side, ok := f.Prediction.Side(); ok {
		fmt.Fprintf(w, "Next hand: %s at %s%% confidence\n", p.winner(side.Winner(), side.Title()), f.Confidence.StringFixed(1))
	} else {
		fmt.Fprintln(w, "Next hand: insufficient data")
	}
	fmt.Fprintf(w, "Reason: %s\n", f.Reason)
	if f.Alternate != nil {
		fmt.Fprintf(w, "Alternate: %s\n", f.Alternate.Title())
	}
	if len(f.Signals) > 0 {
		fmt.Fprintln(w, "Signals:")
		for _, s := range f.Signals {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	_, err := fmt.Fprintf(w, "Next six: %s\n", lookaheadText(f.NextPattern[:]))
	return err
}

func lookaheadText(entries []models.Lookahead) string {
	out := make([]string, len(entries))
	for i, e := range entries {
		switch e {
		case models.LookaheadPlayer:
			out[i] = "P"
		case models.LookaheadBanker:
			out[i] = "B"
		default:
			out[i] = "?"
		}
	}
	return strings.Join(out, " ")
}

func renderRoads(w io.Writer, roads analyzer.Roads) error {
	p := newPalette(w)

	fmt.Fprintln(w, p.header.Render("Big Road"))
	cols := make([][]string, len(roads.Primary))
	for i, col := range roads.Primary {
		for _, cell := range col {
			text := letter(cell.Winner.Winner())
			if cell.Ties > 0 {
				text += fmt.Sprintf("%d", cell.Ties)
			}
			cols[i] = append(cols[i], p.winner(cell.Winner.Winner(), text))
		}
	}
	writeGrid(w, cols)

	fmt.Fprintln(w, p.header.Render("Bead Plate"))
	for row := 0; row < analyzer.BeadPlateRows; row++ {
		cells := make([]string, analyzer.BeadPlateCols)
		for col := 0; col < analyzer.BeadPlateCols; col++ {
			rec := roads.BeadPlate[row][col]
			if rec == nil {
				cells[col] = p.muted.Render(".")
				continue
			}
			cells[col] = p.winner(rec.Winner, letter(rec.Winner))
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}

	for _, derived := range []struct {
		name string
		road []analyzer.DerivedColumn
	}{
		{"Big Eye Boy", roads.BigEyeBoy},
		{"Small Road", roads.Small},
		{"Cockroach Road", roads.Cockroach},
	} {
		fmt.Fprintln(w, p.header.Render(derived.name))
		cols := make([][]string, len(derived.road))
		for i, col := range derived.road {
			for _, m := range col {
				if m == analyzer.MarkerRed {
					cols[i] = append(cols[i], p.banker.Render("R"))
				} else {
					cols[i] = append(cols[i], p.player.Render("b"))
				}
			}
		}
		writeGrid(w, cols)
	}

	fmt.Fprintln(w, p.header.Render("Predicted Road"))
	cols = make([][]string, len(roads.Predicted))
	for i, col := range roads.Predicted {
		for _, e := range col {
			cols[i] = append(cols[i], lookaheadText([]models.Lookahead{e}))
		}
	}
	writeGrid(w, cols)
	return nil
}

// writeGrid prints columns top-down, left to right
func writeGrid(w io.Writer, cols [][]string) {
	if len(cols) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	height := 0
	for _, col := range cols {
		if len(col) > height {
			height = len(col)
		}
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for row := 0; row < height; row++ {
		cells := make([]string, len(cols))
		for i, col := range cols {
			if row < len(col) {
				cells[i] = col[row]
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}
