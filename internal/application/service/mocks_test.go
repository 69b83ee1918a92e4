package service

import (
	"context"
	"fmt"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
)

// Mock repositories with function fields; zero values behave like an empty
// store.

type mockNotifRepo struct {
	createFunc           func(ctx context.Context, n *entity.Notification) error
	getByIDFunc          func(ctx context.Context, id int64) (*entity.Notification, error)
	listFunc             func(ctx context.Context, filter port.NotificationFilter) ([]*entity.Notification, error)
	updateFunc           func(ctx context.Context, n *entity.Notification) error
	updateStatusFromFunc func(ctx context.Context, id int64, from, to workflow.State) (bool, error)
	countByStatusFunc    func(ctx context.Context) (map[workflow.State]int, error)
}

func (m *mockNotifRepo) Create(ctx context.Context, n *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	n.ID = 1
	return nil
}

func (m *mockNotifRepo) GetByID(ctx context.Context, id int64) (*entity.Notification, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockNotifRepo) List(ctx context.Context, filter port.NotificationFilter) ([]*entity.Notification, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*entity.Notification{}, nil
}

func (m *mockNotifRepo) Update(ctx context.Context, n *entity.Notification) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, n)
	}
	return nil
}

func (m *mockNotifRepo) UpdateStatusFrom(ctx context.Context, id int64, from, to workflow.State) (bool, error) {
	if m.updateStatusFromFunc != nil {
		return m.updateStatusFromFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *mockNotifRepo) CountByStatus(ctx context.Context) (map[workflow.State]int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx)
	}
	return map[workflow.State]int{}, nil
}

type mockActionRepo struct {
	createFunc                func(ctx context.Context, action *entity.ActionEntry) error
	getByNotificationIDFunc   func(ctx context.Context, notificationID int64) ([]*entity.ActionEntry, error)
	getFinalizedExecutorsFunc func(ctx context.Context, notificationID int64) ([]int64, error)
}

func (m *mockActionRepo) Create(ctx context.Context, action *entity.ActionEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, action)
	}
	action.ID = 1
	return nil
}

func (m *mockActionRepo) GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.ActionEntry, error) {
	if m.getByNotificationIDFunc != nil {
		return m.getByNotificationIDFunc(ctx, notificationID)
	}
	return []*entity.ActionEntry{}, nil
}

func (m *mockActionRepo) GetFinalizedExecutors(ctx context.Context, notificationID int64) ([]int64, error) {
	if m.getFinalizedExecutorsFunc != nil {
		return m.getFinalizedExecutorsFunc(ctx, notificationID)
	}
	return []int64{}, nil
}

type mockHistoryRepo struct {
	createFunc func(ctx context.Context, h *entity.HistoryEntry) error
	entries    []*entity.HistoryEntry
}

func (m *mockHistoryRepo) Create(ctx context.Context, h *entity.HistoryEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, h)
	}
	m.entries = append(m.entries, h)
	return nil
}

func (m *mockHistoryRepo) GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.HistoryEntry, error) {
	return m.entries, nil
}

type mockAttachmentRepo struct {
	createFunc func(ctx context.Context, att *entity.Attachment) error
	records    []*entity.Attachment
}

func (m *mockAttachmentRepo) Create(ctx context.Context, att *entity.Attachment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, att)
	}
	m.records = append(m.records, att)
	return nil
}

func (m *mockAttachmentRepo) GetByNotificationID(ctx context.Context, notificationID int64) ([]*entity.Attachment, error) {
	return m.records, nil
}

func (m *mockAttachmentRepo) GetByUniqueName(ctx context.Context, uniqueName string) (*entity.Attachment, error) {
	for _, att := range m.records {
		if att.UniqueName == uniqueName {
			return att, nil
		}
	}
	return nil, nil
}

type mockUserRepo struct {
	users map[int64]*entity.User
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	if m.users == nil {
		m.users = map[int64]*entity.User{}
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entity.User, error) {
	var out []*entity.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListActive(ctx context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range m.users {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

type mockStorage struct {
	saveFunc func(ctx context.Context, notificationID int64, originalName string, content []byte) (string, error)
	files    map[string][]byte
}

func (m *mockStorage) Save(ctx context.Context, notificationID int64, originalName string, content []byte) (string, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, notificationID, originalName, content)
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	uniqueName := fmt.Sprintf("%d_mock_%s", notificationID, originalName)
	m.files[uniqueName] = content
	return uniqueName, nil
}

func (m *mockStorage) Read(ctx context.Context, uniqueName string) ([]byte, error) {
	content, ok := m.files[uniqueName]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", uniqueName)
	}
	return content, nil
}

func (m *mockStorage) Exists(ctx context.Context, uniqueName string) bool {
	_, ok := m.files[uniqueName]
	return ok
}

func (m *mockStorage) Delete(ctx context.Context, uniqueName string) error {
	delete(m.files, uniqueName)
	return nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// Test fixtures shared across service tests.

func testClassifier() *entity.User {
	return &entity.User{ID: 10, Username: "clara", Name: "Clara Lima", Roles: []string{entity.RoleClassifier}, Active: true}
}

func testExecutor(id int64, username string) *entity.User {
	return &entity.User{ID: id, Username: username, Name: "Executor " + username, Roles: []string{entity.RoleExecutor}, Active: true}
}

func testApprover() *entity.User {
	return &entity.User{ID: 30, Username: "ana", Name: "Ana Souza", Roles: []string{entity.RoleApprover}, Active: true}
}

func pendingNotification(id int64) *entity.Notification {
	return &entity.Notification{
		ID:                  id,
		Title:               "Queda de paciente",
		Description:         "Paciente escorregou no corredor",
		Location:            "Ala B",
		OccurrenceDate:      "2025-03-01",
		ReportingDepartment: "Enfermagem",
		NotifiedDepartment:  "Qualidade",
		EventShift:          "Diurno",
		Status:              workflow.StatePendingClassification,
		Executors:           []int64{},
	}
}

func validClassifyInput() ClassifyInput {
	no := false
	yes := true
	return ClassifyInput{
		NNC:                entity.NNCEventWithHarm,
		DamageLevel:        entity.DamageSevere,
		Priority:           "Alta",
		NeverEvent:         entity.NeverEventNotApplicable,
		IsSentinelEvent:    &no,
		OMS:                []string{"Quedas"},
		EventTypeMain:      entity.EventTypeClinical,
		EventTypeSub:       []string{"META 6 - Queda de Paciente e Lesão por Pressão"},
		RequiresApproval:   &yes,
		ApproverID:         int64Ptr(30),
		ExecutorIDs:        []int64{20, 21},
		NotifiedDepartment: "Qualidade",
	}
}

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }
