package analyzer

import (
	"fmt"
	"testing"

	"github.com/yourusername/baccarat-tracker/internal/models"
)

// ledgerOf builds records from a compact string such as "PPBT", oldest first.
func ledgerOf(t *testing.T, seq string) []models.OutcomeRecord {
	t.Helper()
	records := make([]models.OutcomeRecord, 0, len(seq))
	for i, c := range seq {
		var w models.Winner
		switch c {
		case 'P':
			w = models.WinnerPlayer
		case 'B':
			w = models.WinnerBanker
		case 'T':
			w = models.WinnerTie
		default:
			t.Fatalf("unknown outcome %q in %q", c, seq)
		}
		records = append(records, models.OutcomeRecord{
			ID:           fmt.Sprintf("r%d", i),
			Winner:       w,
			Timestamp:    int64(1700000000000 + i),
			ShoeNumber:   1,
			DealerNumber: 1,
		})
	}
	return records
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func lookaheadOf(seq string) [models.LookaheadLength]models.Lookahead {
	var out [models.LookaheadLength]models.Lookahead
	for i, c := range seq {
		switch c {
		case 'P':
			out[i] = models.LookaheadPlayer
		case 'B':
			out[i] = models.LookaheadBanker
		default:
			out[i] = models.LookaheadUnknown
		}
	}
	return out
}
