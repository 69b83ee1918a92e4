package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hsvida/incident-workflow/internal/domain/deadline"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

func newTestExporter(now time.Time) *RegisterExporter {
	e := NewRegisterExporter(zap.NewNop())
	e.now = func() time.Time { return now }
	return e
}

func TestRegisterExporter_Build(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	concludedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	notifications := []*entity.Notification{
		{
			ID:        1,
			Title:     "Queda de paciente no corredor",
			Status:    workflow.StateInExecution,
			CreatedAt: time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC),
			Executors: []int64{20, 99},
			Classification: &entity.Classification{
				NNC:          entity.NNCEventWithHarm,
				DamageLevel:  entity.DamageSevere,
				Priority:     "Alta",
				DeadlineDate: "2025-02-23",
			},
		},
		{
			ID:        2,
			Title:     "Medicamento vencido em estoque",
			Status:    workflow.StateApproved,
			CreatedAt: time.Date(2025, 2, 25, 8, 0, 0, 0, time.UTC),
			Classification: &entity.Classification{
				NNC:          entity.NNCNonConformity,
				Priority:     "Média",
				DeadlineDate: "2025-03-27",
			},
			Conclusion: &entity.Conclusion{
				ConcludedBy: "clara",
				Timestamp:   concludedAt,
				StatusFinal: "aprovada",
			},
		},
		{
			ID:        3,
			Title:     "Relato sem triagem",
			Status:    workflow.StatePendingClassification,
			CreatedAt: time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC),
		},
	}

	f, err := newTestExporter(now).Build(notifications, map[int64]string{20: "Bruno Alves"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != registerSheet {
		t.Fatalf("sheets = %v, want [%s]", sheets, registerSheet)
	}

	rows, err := f.GetRows(registerSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}

	if got := rows[0][1]; got != "Título" {
		t.Errorf("header[1] = %q, want Título", got)
	}

	// Open and past due
	if got := rows[1][6]; got != string(deadline.LabelOverdue) {
		t.Errorf("row 1 deadline status = %q, want %q", got, deadline.LabelOverdue)
	}
	// Unknown executor id falls back to the numeric id
	if got := rows[1][7]; got != "Bruno Alves, 99" {
		t.Errorf("row 1 executors = %q", got)
	}

	// Concluded before the deadline stays on track even after it passes
	if got := rows[2][6]; got != string(deadline.LabelOnTrack) {
		t.Errorf("row 2 deadline status = %q, want %q", got, deadline.LabelOnTrack)
	}
	if got := rows[2][9]; got != concludedAt.Format(time.RFC3339) {
		t.Errorf("row 2 concluded = %q", got)
	}

	// Unclassified rows carry no deadline
	if got := rows[3][6]; got != string(deadline.LabelNoDeadline) {
		t.Errorf("row 3 deadline status = %q, want %q", got, deadline.LabelNoDeadline)
	}
}

func TestRegisterExporter_SaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registro.xlsx")

	err := newTestExporter(time.Now()).SaveTo(path, []*entity.Notification{
		{ID: 7, Title: "Teste", Status: workflow.StatePendingClassification, CreatedAt: time.Now()},
	}, nil)
	if err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(registerSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}
