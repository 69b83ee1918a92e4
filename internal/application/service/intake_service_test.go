package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

func validCreateInput() CreateNotificationInput {
	return CreateNotificationInput{
		Title:               "Queda de paciente",
		Description:         "Paciente escorregou no corredor da ala B",
		Location:            "Ala B",
		OccurrenceDate:      "2025-03-01",
		ReportingDepartment: "Enfermagem",
		NotifiedDepartment:  "Qualidade",
		EventShift:          "Diurno",
	}
}

func newIntakeFixture() (IntakeService, *mockHistoryRepo, *mockAttachmentRepo, *mockStorage) {
	historyRepo := &mockHistoryRepo{}
	attachmentRepo := &mockAttachmentRepo{}
	storage := &mockStorage{}
	svc := NewIntakeService(&mockNotifRepo{}, historyRepo, attachmentRepo, storage, &mockTxManager{}, &mockLogger{})
	return svc, historyRepo, attachmentRepo, storage
}

func TestIntakeService_Create(t *testing.T) {
	svc, historyRepo, _, _ := newIntakeFixture()

	n, err := svc.Create(context.Background(), validCreateInput(), "joana")
	require.NoError(t, err)

	assert.Equal(t, int64(1), n.ID)
	assert.Equal(t, workflow.StatePendingClassification, n.Status)
	assert.Empty(t, n.Executors)
	assert.Nil(t, n.Classification)

	require.Len(t, historyRepo.entries, 1)
	assert.Equal(t, "Notificação criada", historyRepo.entries[0].Action)
	assert.Equal(t, "joana", historyRepo.entries[0].PerformedBy)
}

func TestIntakeService_Create_WithAttachments(t *testing.T) {
	svc, _, attachmentRepo, storage := newIntakeFixture()

	input := validCreateInput()
	input.Attachments = []AttachmentUpload{
		{OriginalName: "foto.jpg", Content: []byte("jpeg")},
		{OriginalName: "boletim.pdf", Content: []byte("pdf")},
	}

	n, err := svc.Create(context.Background(), input, "joana")
	require.NoError(t, err)

	require.Len(t, attachmentRepo.records, 2)
	assert.Equal(t, n.ID, attachmentRepo.records[0].NotificationID)
	assert.Equal(t, "foto.jpg", attachmentRepo.records[0].OriginalName)
	assert.True(t, storage.Exists(context.Background(), attachmentRepo.records[0].UniqueName))
}

func TestIntakeService_Create_ReportsEveryViolation(t *testing.T) {
	svc, _, _, _ := newIntakeFixture()

	_, err := svc.Create(context.Background(), CreateNotificationInput{}, "joana")
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.GreaterOrEqual(t, len(vErr.Violations), 7)
}

func TestIntakeService_Create_ConditionalRequirements(t *testing.T) {
	svc, _, _, _ := newIntakeFixture()

	input := validCreateInput()
	input.ImmediateActionsTaken = true
	input.PatientInvolved = true

	_, err := svc.Create(context.Background(), input, "joana")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Violations, 3)

	input.ImmediateActionDescription = "Piso sinalizado"
	input.PatientID = "RX-1029"
	input.PatientOutcomeDeath = boolPtr(false)
	_, err = svc.Create(context.Background(), input, "joana")
	assert.NoError(t, err)
}

func TestIntakeService_Create_RejectsBadDate(t *testing.T) {
	svc, _, _, _ := newIntakeFixture()

	input := validCreateInput()
	input.OccurrenceDate = "01/03/2025"

	_, err := svc.Create(context.Background(), input, "joana")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
