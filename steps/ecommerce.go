package steps

import (
	"context"
	"fmt"

	"github.com/ssoriche/prioflow/workflow"
)

// InventoryCheck reserves inventory and records the fulfilling warehouse,
// ported from the prototype's inventory_check_step.
func InventoryCheck(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["inventory_reserved"] = true
	c.Data["available_items"] = requestSliceLen(c.Request, "items")
	c.Data["warehouse_location"] = "US_EAST"
	return c, nil
}

// PaymentProcessing charges the order total, ported from
// payment_processing_step.
func PaymentProcessing(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	amount := requestFloat(c.Request, "total_amount", 0)
	c.Data["payment_processed"] = true
	c.Data["transaction_id"] = deterministicID("txn_", fmt.Sprintf("%v", amount))
	c.Data["payment_status"] = "completed"
	c.Data["charged_amount"] = amount
	return c, nil
}

// ShippingCalculation estimates cost and delivery window, ported from
// shipping_calculation_step.
func ShippingCalculation(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	address := requestString(c.Request, "shipping_address", "")
	c.Data["shipping_cost"] = 15.99
	c.Data["estimated_delivery"] = "3-5_business_days"
	c.Data["shipping_carrier"] = "FedEx"
	c.Data["tracking_number"] = deterministicID("FX", address)
	return c, nil
}

// OrderFulfillment prepares the shipment, ported from
// order_fulfillment_step.
func OrderFulfillment(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["picking_list_generated"] = true
	c.Data["shipping_label_created"] = true
	c.Data["order_status"] = "ready_to_ship"
	c.Data["fulfillment_center"] = dataString(c.Data, "warehouse_location", "default")
	return c, nil
}

// CustomerNotification sends confirmation and tracking info, ported from
// customer_notification_step.
func CustomerNotification(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	c.Data["confirmation_email_sent"] = true
	c.Data["tracking_sms_sent"] = true
	c.Data["customer_portal_updated"] = true
	return c, nil
}

// OrderProcessingPipeline is the e-commerce order workflow's step list, in
// the order the prototype's main_layered.py registers them.
func OrderProcessingPipeline() []workflow.NamedStep {
	return []workflow.NamedStep{
		workflow.Step("inventory_check", InventoryCheck),
		workflow.Step("payment_processing", PaymentProcessing),
		workflow.Step("shipping_calculation", ShippingCalculation),
		workflow.Step("order_fulfillment", OrderFulfillment),
		workflow.Step("customer_notification", CustomerNotification),
	}
}

// TransactionAnalysis scores a transaction for fraud risk factors, ported
// from transaction_analysis_step.
func TransactionAnalysis(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	amount := requestFloat(c.Request, "total_amount", 0)
	score := 0.45
	if amount < 1000 {
		score = 0.85
	}
	c.Data["transaction_score"] = score
	c.Data["velocity_check"] = "passed"
	c.Data["geo_location_match"] = true
	return c, nil
}

// MLFraudScoring refines the transaction score with a model pass, ported
// from ml_fraud_scoring_step.
func MLFraudScoring(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	score := dataFloat(c.Data, "transaction_score", 0.5)
	c.Data["ml_fraud_score"] = score * 0.9
	probability := "high"
	if score > 0.7 {
		probability = "low"
	}
	c.Data["fraud_probability"] = probability
	c.Data["model_version"] = "fraud_detector_v2.1"
	return c, nil
}

// ManualReview queues high-risk transactions for human review, ported from
// manual_review_step.
func ManualReview(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
	probability := dataString(c.Data, "fraud_probability", "medium")
	if probability == "high" {
		c.Data["manual_review_required"] = true
		c.Data["review_queue"] = "high_priority"
		c.Data["estimated_review_time"] = "2_hours"
	} else {
		c.Data["auto_approved"] = true
		c.Data["manual_review_required"] = false
	}
	return c, nil
}

// FraudDetectionPipeline is the fraud-screening workflow's step list.
func FraudDetectionPipeline() []workflow.NamedStep {
	return []workflow.NamedStep{
		workflow.Step("transaction_analysis", TransactionAnalysis),
		workflow.Step("ml_fraud_scoring", MLFraudScoring),
		workflow.Step("manual_review", ManualReview),
	}
}
