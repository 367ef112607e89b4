package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/application/service"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
	"github.com/ideen-revvo/credit-workflow/internal/domain/workflow"
	"github.com/ideen-revvo/credit-workflow/internal/report"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	builder     service.WorkflowBuilder
	coordinator service.ApprovalCoordinator
	policyStore port.PolicyStore
	exporter    *report.AuditReportExporter
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	builder service.WorkflowBuilder,
	coordinator service.ApprovalCoordinator,
	policyStore port.PolicyStore,
	exporter *report.AuditReportExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		builder:     builder,
		coordinator: coordinator,
		policyStore: policyStore,
		exporter:    exporter,
		logger:      logger,
	}
}

// HealthCheck returns server health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type initiateWorkflowRequest struct {
	RequestID int64 `json:"request_id" binding:"required"`
}

type workflowResponse struct {
	Instance *entity.WorkflowInstance `json:"instance"`
	Steps    []*entity.WorkflowStep   `json:"steps"`
}

// InitiateWorkflow builds the approval workflow for a credit-limit request
func (h *Handlers) InitiateWorkflow(c *gin.Context) {
	var req initiateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": err.Error()})
		return
	}

	instance, steps, err := h.builder.Build(c.Request.Context(), req.RequestID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, workflowResponse{Instance: instance, Steps: steps})
}

// GetWorkflow returns an instance with its ordered steps
func (h *Handlers) GetWorkflow(c *gin.Context) {
	instanceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	instance, steps, err := h.coordinator.GetInstance(c.Request.Context(), instanceID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, workflowResponse{Instance: instance, Steps: steps})
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comments string `json:"comments"`
}

// SubmitDecision applies an approve/reject decision to a step
func (h *Handlers) SubmitDecision(c *gin.Context) {
	instanceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	stepID, ok := h.pathID(c, "stepID")
	if !ok {
		return
	}
	actorID, actorRoleID, ok := h.actor(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": err.Error()})
		return
	}

	instance, err := h.coordinator.Act(c.Request.Context(), instanceID, stepID, actorID, actorRoleID, req.Decision, req.Comments)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"instance": instance})
}

// StartStep explicitly claims a step for review
func (h *Handlers) StartStep(c *gin.Context) {
	instanceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	stepID, ok := h.pathID(c, "stepID")
	if !ok {
		return
	}
	actorID, actorRoleID, ok := h.actor(c)
	if !ok {
		return
	}

	step, err := h.coordinator.StartStep(c.Request.Context(), instanceID, stepID, actorID, actorRoleID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": step})
}

// DownloadReport streams an instance's audit report as an xlsx workbook
func (h *Handlers) DownloadReport(c *gin.Context) {
	instanceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	buf, filename, err := h.exporter.Export(c.Request.Context(), instanceID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ListCompanyRules returns a company's active workflow rules
func (h *Handlers) ListCompanyRules(c *gin.Context) {
	companyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	rules, err := h.policyStore.ListActiveRules(c.Request.Context(), companyID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// pathID parses an int64 path parameter, responding 400 on failure
func (h *Handlers) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// actor reads the authenticated caller's identity from the headers the
// identity layer in front of this service injects.
func (h *Handlers) actor(c *gin.Context) (actorID, actorRoleID int64, ok bool) {
	actorID, err := strconv.ParseInt(c.GetHeader("X-Actor-ID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "missing_identity", "error": "missing or invalid X-Actor-ID header"})
		return 0, 0, false
	}
	actorRoleID, err = strconv.ParseInt(c.GetHeader("X-Actor-Role"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "missing_identity", "error": "missing or invalid X-Actor-Role header"})
		return 0, 0, false
	}
	return actorID, actorRoleID, true
}

// renderError maps every core error to a stable machine-readable code so
// the consuming UI can render an actionable message.
func (h *Handlers) renderError(c *gin.Context, err error) {
	type mapping struct {
		target error
		status int
		code   string
	}

	mappings := []mapping{
		{service.ErrNoApplicableRule, http.StatusUnprocessableEntity, "no_applicable_rule"},
		{service.ErrAmbiguousRule, http.StatusConflict, "ambiguous_rule"},
		{service.ErrInvalidDecision, http.StatusBadRequest, "invalid_decision"},
		{service.ErrStepNotFound, http.StatusNotFound, "step_not_found"},
		{service.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
		{service.ErrOutOfOrder, http.StatusConflict, "out_of_order"},
		{service.ErrWorkflowAlreadyResolved, http.StatusConflict, "workflow_already_resolved"},
		{workflow.ErrAlreadyStarted, http.StatusConflict, "already_started"},
		{workflow.ErrAlreadyFinalized, http.StatusConflict, "already_finalized"},
		{workflow.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{port.ErrDuplicateWorkflow, http.StatusConflict, "duplicate_workflow"},
		{port.ErrConcurrentModification, http.StatusConflict, "concurrent_modification"},
		{port.ErrNotFound, http.StatusNotFound, "not_found"},
		{port.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, gin.H{"code": m.code, "error": err.Error()})
			return
		}
	}

	h.logger.Error("Unhandled error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "error": "internal error"})
}
