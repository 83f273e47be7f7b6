package httpapi

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
)

func TestBuildRankingWorkbook(t *testing.T) {
	board := ranking.Board{
		Scope: ranking.Scope{RoundID: 3},
		Entries: []ranking.Entry{
			{Position: 1, UserID: "alice", DisplayName: "Alice", Points: 2, Hits: 2, Scored: 3},
			{Position: 2, UserID: "bob", DisplayName: "Bob", Points: 1, Hits: 1, Scored: 3, Withdrawn: true},
		},
	}

	buf, err := buildRankingWorkbook(board)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(rankingSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "Participante" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "Alice" || rows[1][2] != "2" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][5] != "Desistiu" {
		t.Fatalf("expected withdrawn label, got %v", rows[2])
	}
}

func TestRankingFileName(t *testing.T) {
	got := rankingFileName(ranking.Scope{PoolID: 1, Year: 2026})
	if got != "ranking-global-pool-1-championship-0-year-2026.xlsx" {
		t.Fatalf("unexpected file name %q", got)
	}
}
