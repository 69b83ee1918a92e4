// Package report builds the Excel register export of the notification base.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hsvida/incident-workflow/internal/domain/deadline"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
)

const registerSheet = "Notificações"

var registerHeader = []string{
	"ID",
	"Título",
	"Status",
	"NNC",
	"Prioridade",
	"Prazo",
	"Situação do Prazo",
	"Executores",
	"Criada em",
	"Concluída em",
}

// RegisterExporter writes the notification register to an .xlsx workbook.
type RegisterExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewRegisterExporter creates a new RegisterExporter
func NewRegisterExporter(logger *zap.Logger) *RegisterExporter {
	return &RegisterExporter{
		logger: logger,
		now:    time.Now,
	}
}

// Build renders one row per notification. executorNames maps user ids to
// display names; unknown ids fall back to the numeric id.
func (e *RegisterExporter) Build(notifications []*entity.Notification, executorNames map[int64]string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, title := range registerHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		e.setCell(f, cell, title)
	}

	today := e.now()
	for i, n := range notifications {
		row := i + 2
		for col, value := range e.registerRow(n, executorNames, today) {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			e.setCell(f, cell, value)
		}
	}

	e.logger.Info("Register export built", zap.Int("notifications", len(notifications)))
	return f, nil
}

// SaveTo writes the register workbook to disk.
func (e *RegisterExporter) SaveTo(path string, notifications []*entity.Notification, executorNames map[int64]string) error {
	f, err := e.Build(notifications, executorNames)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func (e *RegisterExporter) registerRow(n *entity.Notification, executorNames map[int64]string, today time.Time) []interface{} {
	nnc := ""
	priority := ""
	deadlineDate := ""
	if n.Classification != nil {
		nnc = n.Classification.NNC
		priority = n.Classification.Priority
		deadlineDate = n.Classification.DeadlineDate
	}

	var completion *time.Time
	concluded := ""
	if n.Conclusion != nil {
		completion = &n.Conclusion.Timestamp
		concluded = n.Conclusion.Timestamp.Format(time.RFC3339)
	}
	status := deadline.Evaluate(deadlineDate, completion, today)

	names := make([]string, 0, len(n.Executors))
	for _, id := range n.Executors {
		if name, ok := executorNames[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("%d", id))
		}
	}

	return []interface{}{
		n.ID,
		n.Title,
		string(n.Status),
		nnc,
		priority,
		deadlineDate,
		string(status.Label),
		strings.Join(names, ", "),
		n.CreatedAt.Format(time.RFC3339),
		concluded,
	}
}

// setCell sets a cell value in the Excel file
func (e *RegisterExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(registerSheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
