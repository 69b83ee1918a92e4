package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hsvida/incident-workflow/internal/application/service"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
)

// ClassifyRequest represents the triage decision payload
type ClassifyRequest struct {
	ActorID                      int64    `json:"actor_id"`
	NNC                          string   `json:"nnc"`
	DamageLevel                  string   `json:"damage_level"`
	Priority                     string   `json:"priority"`
	NeverEvent                   string   `json:"never_event"`
	IsSentinelEvent              *bool    `json:"is_sentinel_event"`
	OMS                          []string `json:"oms"`
	EventTypeMain                string   `json:"event_type_main"`
	EventTypeSub                 []string `json:"event_type_sub"`
	EventTypeFreeText            string   `json:"event_type_free_text"`
	Notes                        string   `json:"notes"`
	RequiresApproval             *bool    `json:"requires_approval"`
	ApproverID                   *int64   `json:"approver_id"`
	ExecutorIDs                  []int64  `json:"executor_ids"`
	NotifiedDepartment           string   `json:"notified_department"`
	NotifiedDepartmentComplement string   `json:"notified_department_complement"`
}

// ReasonRequest carries operations that need a justification text
type ReasonRequest struct {
	ActorID int64  `json:"actor_id"`
	Reason  string `json:"reason"`
}

// NotesRequest carries operations with optional free-form notes
type NotesRequest struct {
	ActorID int64  `json:"actor_id"`
	Notes   string `json:"notes"`
}

// ReviewRejectRequest carries the execution-review rejection payload
type ReviewRejectRequest struct {
	ActorID int64  `json:"actor_id"`
	Reason  string `json:"reason"`
	Notes   string `json:"notes"`
}

// AddExecutorRequest carries the mid-execution assignment payload
type AddExecutorRequest struct {
	ActorID    int64 `json:"actor_id"`
	ExecutorID int64 `json:"executor_id"`
}

// RecordActionRequest represents the multipart action form. Evidence file
// parts arrive under the "evidence" field.
type RecordActionRequest struct {
	ActorID             int64  `form:"actor_id"`
	Description         string `form:"description"`
	Final               bool   `form:"final"`
	EvidenceDescription string `form:"evidence_description"`
}

// Classify handles POST /api/notifications/:id/classify
func (h *Handlers) Classify(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	actor, ok := h.actingUser(c, req.ActorID)
	if !ok {
		return
	}

	input := service.ClassifyInput{
		NNC:                          req.NNC,
		DamageLevel:                  req.DamageLevel,
		Priority:                     req.Priority,
		NeverEvent:                   req.NeverEvent,
		IsSentinelEvent:              req.IsSentinelEvent,
		OMS:                          req.OMS,
		EventTypeMain:                req.EventTypeMain,
		EventTypeSub:                 req.EventTypeSub,
		EventTypeFreeText:            req.EventTypeFreeText,
		Notes:                        req.Notes,
		RequiresApproval:             req.RequiresApproval,
		ApproverID:                   req.ApproverID,
		ExecutorIDs:                  req.ExecutorIDs,
		NotifiedDepartment:           req.NotifiedDepartment,
		NotifiedDepartmentComplement: req.NotifiedDepartmentComplement,
	}

	n, err := h.services.Classification.Classify(c.Request.Context(), id, input, actor)
	if err != nil {
		h.writeServiceError(c, "Failed to classify notification", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// Reject handles POST /api/notifications/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	actor, ok := h.actingUser(c, req.ActorID)
	if !ok {
		return
	}

	n, err := h.services.Classification.Reject(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		h.writeServiceError(c, "Failed to reject notification", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// RecordAction handles POST /api/notifications/:id/actions
func (h *Handlers) RecordAction(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	var req RecordActionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid form data"})
		return
	}

	actor, ok := h.actingUser(c, req.ActorID)
	if !ok {
		return
	}

	uploads, err := h.readUploads(c, "evidence")
	if err != nil {
		h.logger.Error("Failed to read evidence uploads", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid evidence upload"})
		return
	}

	input := service.RecordActionInput{
		Description:         req.Description,
		Final:               req.Final,
		EvidenceDescription: req.EvidenceDescription,
		EvidenceUploads:     uploads,
	}

	n, err := h.services.Execution.RecordAction(c.Request.Context(), id, input, actor)
	if err != nil {
		h.writeServiceError(c, "Failed to record action", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// AddExecutor handles POST /api/notifications/:id/executors
func (h *Handlers) AddExecutor(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	var req AddExecutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	actor, ok := h.actingUser(c, req.ActorID)
	if !ok {
		return
	}

	n, err := h.services.Execution.AddExecutor(c.Request.Context(), id, req.ExecutorID, actor)
	if err != nil {
		h.writeServiceError(c, "Failed to add executor", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// AcceptExecution handles POST /api/notifications/:id/review/accept
func (h *Handlers) AcceptExecution(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	actor, ok := h.actingUser(c, req.ActorID)
	if !ok {
		return
	}

	n, err := h.services.Review.AcceptExecution(c.Request.Context(), id, req.Notes, actor)
	if err != nil {
		h.writeServiceError(c, "Failed to accept execution", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// RejectExecution handles POST /api/notifications/:id/review/reject
func (h *Handlers) RejectExecution(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	var req ReviewRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	actor, ok := h.actingUser(c, req.ActorID)
	if !ok {
		return
	}

	n, err := h.services.Review.RejectExecution(c.Request.Context(), id, req.Reason, req.Notes, actor)
	if err != nil {
		h.writeServiceError(c, "Failed to reject execution", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// Approve handles POST /api/notifications/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	actor, ok := h.actingUser(c, req.ActorID)
	if !ok {
		return
	}

	n, err := h.services.Approval.Approve(c.Request.Context(), id, req.Notes, actor)
	if err != nil {
		h.writeServiceError(c, "Failed to approve notification", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// Reprove handles POST /api/notifications/:id/reprove
func (h *Handlers) Reprove(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	actor, ok := h.actingUser(c, req.ActorID)
	if !ok {
		return
	}

	n, err := h.services.Approval.Reprove(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		h.writeServiceError(c, "Failed to reprove notification", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// GetDashboard handles GET /api/reports/dashboard
func (h *Handlers) GetDashboard(c *gin.Context) {
	dashboard, err := h.services.Report.Dashboard(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "Failed to build dashboard", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: dashboard})
}

// GetRegister handles GET /api/reports/register
func (h *Handlers) GetRegister(c *gin.Context) {
	notifications, err := h.services.Report.Register(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "Failed to build register", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// ExportRegister handles GET /api/reports/register/export, streaming the
// register workbook as a download.
func (h *Handlers) ExportRegister(c *gin.Context) {
	notifications, err := h.services.Report.Register(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "Failed to build register", err)
		return
	}

	names, err := h.executorNames(c, notifications)
	if err != nil {
		h.writeServiceError(c, "Failed to resolve executor names", err)
		return
	}

	f, err := h.exporter.Build(notifications, names)
	if err != nil {
		h.writeServiceError(c, "Failed to build register export", err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="registro_notificacoes.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream register export", "error", err)
	}
}

// executorNames resolves every executor referenced by the register rows.
func (h *Handlers) executorNames(c *gin.Context, notifications []*entity.Notification) (map[int64]string, error) {
	seen := map[int64]bool{}
	ids := []int64{}
	for _, n := range notifications {
		for _, id := range n.Executors {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := h.users.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
