package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/ssoriche/prioflow/workflow"
)

// DataExtraction pulls a record from a source system, ported from
// data_extraction_step.
func DataExtraction(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	userID := requestString(c.Request, "user_id", "unknown")
	c.Data["extracted_data"] = fmt.Sprintf("user_data_%s", userID)
	c.Data["extraction_status"] = "completed"
	return c, nil
}

// DataTransformation normalizes the extracted record, ported from
// data_transformation_step.
func DataTransformation(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	raw := dataString(c.Data, "extracted_data", "")
	c.Data["transformed_data"] = strings.ToUpper(raw)
	c.Data["validation_passed"] = true
	return c, nil
}

// DataEnrichment appends supplementary detail to the transformed record,
// ported from data_enrichment_step.
func DataEnrichment(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	transformed := dataString(c.Data, "transformed_data", "")
	c.Data["enriched_data"] = transformed + "_ENRICHED"
	c.Data["enrichment_timestamp"] = "now"
	return c, nil
}

// Notification sends a completion notice, ported from notification_step.
func Notification(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["notification_sent"] = true
	c.Data["notification_channel"] = "email"
	return c, nil
}

// AuditLogging records a compliance audit trail entry, ported from
// audit_logging_step.
func AuditLogging(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["audit_logged"] = true
	c.Data["compliance_status"] = "compliant"
	return c, nil
}

// DataProcessingPipeline is the long-running, preemptible data-processing
// workflow's step list.
func DataProcessingPipeline() []workflow.NamedStep {
	return []workflow.NamedStep{
		workflow.Step("data_extraction", DataExtraction),
		workflow.Step("data_transformation", DataTransformation),
		workflow.Step("data_enrichment", DataEnrichment),
		workflow.Step("audit_logging", AuditLogging),
	}
}

// UrgentNotificationPipeline is the single-step, high-priority interrupt
// workflow's step list.
func UrgentNotificationPipeline() []workflow.NamedStep {
	return []workflow.NamedStep{
		workflow.Step("notification", Notification),
	}
}
