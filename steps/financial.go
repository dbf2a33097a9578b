package steps

import (
	"context"
	"fmt"

	"github.com/ssoriche/prioflow/workflow"
)

// CreditDataCollection gathers credit history inputs, ported from
// credit_data_collection_step. The prototype's fixture values are a
// deliberate stand-in for a real credit-bureau integration, which is out of
// scope here just as it was in the original.
func CreditDataCollection(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["credit_score"] = 750.0
	c.Data["income_verified"] = true
	c.Data["employment_history"] = "5_years"
	c.Data["debt_to_income"] = 0.3
	return c, nil
}

// RiskCalculation derives a blended risk score from credit score and
// debt-to-income ratio, ported from risk_calculation_step.
func RiskCalculation(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	creditScore := dataFloat(c.Data, "credit_score", 600)
	dti := dataFloat(c.Data, "debt_to_income", 0.5)

	riskScore := (creditScore/850)*0.7 + (1-dti)*0.3
	c.Data["risk_score"] = roundTo3(riskScore)

	category := "high"
	switch {
	case riskScore > 0.7:
		category = "low"
	case riskScore > 0.4:
		category = "medium"
	}
	c.Data["risk_category"] = category
	return c, nil
}

// ComplianceCheck runs KYC/AML screening, ported from
// compliance_check_step.
func ComplianceCheck(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["kyc_verified"] = true
	c.Data["aml_cleared"] = true
	c.Data["regulatory_flags"] = []string{}
	c.Data["compliance_status"] = "approved"
	return c, nil
}

// LoanDecision approves or rejects the loan application, ported from
// loan_decision_step.
func LoanDecision(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	category := dataString(c.Data, "risk_category", "high")
	compliance := dataString(c.Data, "compliance_status", "pending")

	if category == "low" && compliance == "approved" {
		c.Data["loan_decision"] = "approved"
		c.Data["interest_rate"] = 3.5
		c.Data["loan_amount"] = requestFloat(c.Request, "requested_amount", 100000)
	} else {
		c.Data["loan_decision"] = "rejected"
		c.Data["rejection_reason"] = fmt.Sprintf("Risk: %s, Compliance: %s", category, compliance)
	}
	return c, nil
}

// NotificationDispatch informs the customer of the loan decision, ported
// from notification_dispatch_step.
func NotificationDispatch(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["notification_sent"] = true
	c.Data["notification_method"] = "email_sms"
	c.Data["customer_notified_at"] = "now"
	return c, nil
}

// RiskAssessmentPipeline is the financial risk-assessment workflow's step
// list.
func RiskAssessmentPipeline() []workflow.NamedStep {
	return []workflow.NamedStep{
		workflow.Step("credit_data_collection", CreditDataCollection),
		workflow.Step("risk_calculation", RiskCalculation),
		workflow.Step("compliance_check", ComplianceCheck),
		workflow.Step("loan_decision", LoanDecision),
		workflow.Step("notification_dispatch", NotificationDispatch),
	}
}

func roundTo3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}
