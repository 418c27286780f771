package audit

import (
	"encoding/json"
	"log"
)

// Business-significant transitions recorded for operability. These events are
// not part of the public contract.
const (
	EventOrderCreated        = "order_created"
	EventOrderStatusUpdated  = "order_status_updated"
	EventPaymentReceived     = "payment_received"
	EventDeploymentCompleted = "deployment_completed"
	EventFreePlanCompleted   = "free_plan_completed"
	EventWebhookProcessed    = "payment_webhook_processed"
	EventManualDeploy        = "manual_deploy_triggered"
)

// Event writes one audit line with structured context.
func Event(event string, fields map[string]interface{}) {
	ctx, err := json.Marshal(fields)
	if err != nil {
		log.Printf("[AUDIT] %s (unserializable context: %v)", event, err)
		return
	}
	log.Printf("[AUDIT] %s %s", event, ctx)
}
