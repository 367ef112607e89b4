// Package report renders workflow audit trails as Excel workbooks for the
// finance teams that archive approval decisions outside the system.
package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
)

const timeLayout = "2006-01-02 15:04:05"

// AuditReportExporter renders one instance's steps and audit trail to xlsx
type AuditReportExporter struct {
	workflowRepo port.WorkflowRepository
	auditRepo    port.AuditRepository
	logger       *zap.Logger
}

// NewAuditReportExporter creates a new exporter
func NewAuditReportExporter(
	workflowRepo port.WorkflowRepository,
	auditRepo port.AuditRepository,
	logger *zap.Logger,
) *AuditReportExporter {
	return &AuditReportExporter{
		workflowRepo: workflowRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

// Export builds the workbook for an instance and returns it with a
// suggested filename.
func (e *AuditReportExporter) Export(ctx context.Context, instanceID int64) (*bytes.Buffer, string, error) {
	instance, steps, err := e.workflowRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, "", fmt.Errorf("load workflow %d: %w", instanceID, err)
	}

	entries, err := e.auditRepo.ListByInstanceID(ctx, instanceID)
	if err != nil {
		return nil, "", fmt.Errorf("load audit trail %d: %w", instanceID, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Approval Report"
	f.SetSheetName(f.GetSheetName(0), sheet)

	e.fillSummary(f, sheet, instance)
	e.fillSteps(f, sheet, steps)
	e.fillAuditTrail(f, sheet, len(steps), entries)

	buf, err := f.WriteToBuffer()
	if err != nil {
		e.logger.Error("Failed to render report",
			zap.Int64("instance_id", instanceID), zap.Error(err))
		return nil, "", fmt.Errorf("render report: %w", err)
	}

	filename := fmt.Sprintf("approval_report_%d.xlsx", instanceID)
	e.logger.Info("Audit report rendered",
		zap.Int64("instance_id", instanceID),
		zap.Int("steps", len(steps)),
		zap.Int("audit_entries", len(entries)))
	return buf, filename, nil
}

// fillSummary writes the instance header block
func (e *AuditReportExporter) fillSummary(f *excelize.File, sheet string, instance *entity.WorkflowInstance) {
	e.setCell(f, sheet, "A1", "Credit Limit Approval Report")
	e.setCell(f, sheet, "A2", "Instance ID")
	e.setCell(f, sheet, "B2", instance.ID)
	e.setCell(f, sheet, "A3", "Request ID")
	e.setCell(f, sheet, "B3", instance.RequestID)
	e.setCell(f, sheet, "A4", "Overall status")
	e.setCell(f, sheet, "B4", instance.OverallStatus)
	e.setCell(f, sheet, "A5", "Created at")
	e.setCell(f, sheet, "B5", instance.CreatedAt.Format(timeLayout))
}

// fillSteps writes one row per step starting at row 8
func (e *AuditReportExporter) fillSteps(f *excelize.File, sheet string, steps []*entity.WorkflowStep) {
	headers := []string{"Step", "Role", "Status", "Started", "Finished", "Approver", "Comments"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 7)
		e.setCell(f, sheet, cell, h)
	}

	for i, step := range steps {
		row := 8 + i
		started, finished := "", ""
		if step.StartedAt != nil {
			started = step.StartedAt.Format(timeLayout)
		}
		if step.FinishedAt != nil {
			finished = step.FinishedAt.Format(timeLayout)
		}

		values := []interface{}{
			step.StepIndex,
			step.ApproverRoleID,
			step.Status,
			started,
			finished,
			step.ApproverID,
			step.Comments,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			e.setCell(f, sheet, cell, v)
		}
	}
}

// fillAuditTrail writes the trail below the step table
func (e *AuditReportExporter) fillAuditTrail(f *excelize.File, sheet string, stepCount int, entries []*entity.AuditEntry) {
	base := 8 + stepCount + 1

	e.setCell(f, sheet, fmt.Sprintf("A%d", base), "Audit trail")

	headers := []string{"Timestamp", "Action", "Actor", "Role", "From", "To", "Comments"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, base+1)
		e.setCell(f, sheet, cell, h)
	}

	for i, entry := range entries {
		row := base + 2 + i
		values := []interface{}{
			entry.Timestamp.Format(timeLayout),
			entry.Action,
			entry.ActorID,
			entry.ActorRoleID,
			entry.PreviousStatus,
			entry.NewStatus,
			entry.Comments,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			e.setCell(f, sheet, cell, v)
		}
	}
}

// setCell sets a cell value, logging failures without aborting the report
func (e *AuditReportExporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Error("Failed to set cell",
			zap.String("cell", cell), zap.Error(err))
	}
}
