package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
)

const rankingSheet = "Ranking"

var rankingHeader = []any{"Posição", "Participante", "Pontos", "Acertos", "Palpites pontuados", "Situação"}

var entryStatusLabels = map[string]string{
	"active":    "Ativo",
	"banned":    "Banido",
	"withdrawn": "Desistiu",
}

func buildRankingWorkbook(board ranking.Board) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(rankingSheet, "A1", &rankingHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, e := range board.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("resolve row %d: %w", i+2, err)
		}
		row := []any{e.Position, e.DisplayName, e.Points, e.Hits, e.Scored, entryStatusLabels[e.Status()]}
		if err := f.SetSheetRow(rankingSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(rankingSheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(rankingSheet, "B", "B", 32); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func rankingFileName(scope ranking.Scope) string {
	name := strings.NewReplacer(":", "-", "=", "-").Replace(scope.Key())
	return "ranking-" + name + ".xlsx"
}
