package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hsvida/incident-workflow/internal/application/port"
	"github.com/hsvida/incident-workflow/internal/application/service"
	"github.com/hsvida/incident-workflow/internal/domain/authz"
	"github.com/hsvida/incident-workflow/internal/domain/entity"
	"github.com/hsvida/incident-workflow/internal/domain/workflow"
	"github.com/hsvida/incident-workflow/internal/report"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services      Services
	users         port.UserRepository
	exporter      *report.RegisterExporter
	maxUploadSize int64
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	services Services,
	users port.UserRepository,
	exporter *report.RegisterExporter,
	maxUploadSize int64,
	logger Logger,
) *Handlers {
	return &Handlers{
		services:      services,
		users:         users,
		exporter:      exporter,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details []string    `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateNotificationRequest represents the multipart intake form. File parts
// arrive under the "attachments" field.
type CreateNotificationRequest struct {
	Title                         string `form:"title"`
	Description                   string `form:"description"`
	Location                      string `form:"location"`
	OccurrenceDate                string `form:"occurrence_date"`
	OccurrenceTime                string `form:"occurrence_time"`
	ReportingDepartment           string `form:"reporting_department"`
	ReportingDepartmentComplement string `form:"reporting_department_complement"`
	NotifiedDepartment            string `form:"notified_department"`
	NotifiedDepartmentComplement  string `form:"notified_department_complement"`
	EventShift                    string `form:"event_shift"`
	ImmediateActionsTaken         bool   `form:"immediate_actions_taken"`
	ImmediateActionDescription    string `form:"immediate_action_description"`
	PatientInvolved               bool   `form:"patient_involved"`
	PatientID                     string `form:"patient_id"`
	PatientOutcomeDeath           *bool  `form:"patient_outcome_death"`
	AdditionalNotes               string `form:"additional_notes"`
	ReportedBy                    string `form:"reported_by"`
}

// CreateNotification handles POST /api/notifications
func (h *Handlers) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid intake form", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid form data"})
		return
	}
	if req.ReportedBy == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "reported_by is required"})
		return
	}

	uploads, err := h.readUploads(c, "attachments")
	if err != nil {
		h.logger.Error("Failed to read attachments", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid attachment upload"})
		return
	}

	input := service.CreateNotificationInput{
		Title:                         req.Title,
		Description:                   req.Description,
		Location:                      req.Location,
		OccurrenceDate:                req.OccurrenceDate,
		OccurrenceTime:                req.OccurrenceTime,
		ReportingDepartment:           req.ReportingDepartment,
		ReportingDepartmentComplement: req.ReportingDepartmentComplement,
		NotifiedDepartment:            req.NotifiedDepartment,
		NotifiedDepartmentComplement:  req.NotifiedDepartmentComplement,
		EventShift:                    req.EventShift,
		ImmediateActionsTaken:         req.ImmediateActionsTaken,
		ImmediateActionDescription:    req.ImmediateActionDescription,
		PatientInvolved:               req.PatientInvolved,
		PatientID:                     req.PatientID,
		PatientOutcomeDeath:           req.PatientOutcomeDeath,
		AdditionalNotes:               req.AdditionalNotes,
		Attachments:                   uploads,
	}

	n, err := h.services.Intake.Create(c.Request.Context(), input, req.ReportedBy)
	if err != nil {
		h.writeServiceError(c, "Failed to create notification", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: n})
}

// ListNotificationsRequest represents query parameters for listing notifications
type ListNotificationsRequest struct {
	Status     string `form:"status"`
	ExecutorID int64  `form:"executor_id"`
	ApproverID int64  `form:"approver_id"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	var req ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	if req.Status != "" && !workflow.State(req.Status).IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown status"})
		return
	}
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	notifications, err := h.services.Intake.List(c.Request.Context(), port.NotificationFilter{
		Status:     workflow.State(req.Status),
		ExecutorID: req.ExecutorID,
		ApproverID: req.ApproverID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		h.writeServiceError(c, "Failed to list notifications", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// GetNotification handles GET /api/notifications/:id
func (h *Handlers) GetNotification(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	n, err := h.services.Intake.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, "Failed to get notification", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// GetHistory handles GET /api/notifications/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	history, err := h.services.Intake.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, "Failed to get history", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// GetActions handles GET /api/notifications/:id/actions
func (h *Handlers) GetActions(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	actions, err := h.services.Execution.GetActions(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, "Failed to get actions", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: actions})
}

// GetAttachments handles GET /api/notifications/:id/attachments
func (h *Handlers) GetAttachments(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}

	attachments, err := h.services.Intake.GetAttachments(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, "Failed to get attachments", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: attachments})
}

// DownloadAttachment handles GET /api/attachments/:unique_name
func (h *Handlers) DownloadAttachment(c *gin.Context) {
	uniqueName := c.Param("unique_name")

	content, att, err := h.services.Intake.ReadAttachment(c.Request.Context(), uniqueName)
	if err != nil {
		h.writeServiceError(c, "Failed to read attachment", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+att.OriginalName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", content)
}

// ListUsers handles GET /api/users. The optional role query narrows the result
// to active holders of that role, for assignment pick lists.
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.ListActive(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "Failed to list users", err)
		return
	}

	if role := c.Query("role"); role != "" {
		users = authz.FilterByRole(users, role)
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Roles:    u.Roles,
		})
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// notificationID parses the :id path parameter, answering 400 on garbage.
func (h *Handlers) notificationID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid notification ID"})
		return 0, false
	}
	return id, true
}

// actingUser resolves the acting user by id, answering the request itself when
// the id is missing or unknown.
func (h *Handlers) actingUser(c *gin.Context, actorID int64) (*entity.User, bool) {
	if actorID <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "actor_id is required"})
		return nil, false
	}

	u, err := h.users.GetByID(c.Request.Context(), actorID)
	if err != nil {
		h.writeServiceError(c, "Failed to resolve acting user", err)
		return nil, false
	}
	if u == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "acting user not found"})
		return nil, false
	}
	return u, true
}

// readUploads collects the file parts under field into attachment uploads.
func (h *Handlers) readUploads(c *gin.Context, field string) ([]service.AttachmentUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	files := form.File[field]
	uploads := make([]service.AttachmentUpload, 0, len(files))
	for _, fh := range files {
		content, err := readFilePart(fh, h.maxUploadSize)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, service.AttachmentUpload{
			OriginalName: fh.Filename,
			Content:      content,
		})
	}
	return uploads, nil
}

func readFilePart(fh *multipart.FileHeader, maxSize int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, maxSize))
}

// writeServiceError maps the service error taxonomy to HTTP status codes.
func (h *Handlers) writeServiceError(c *gin.Context, msg string, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "validation failed",
			Details: vErr.Violations,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrPrecondition), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
