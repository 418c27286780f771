package order

// CreateOrderInput is the validated, normalized checkout submission.
type CreateOrderInput struct {
	FullName    string
	Email       string
	Whatsapp    string
	StoreName   string
	TemplateKey string
	PlanType    string
}

// CreateOrderResult is what the checkout endpoint returns to the customer.
// PaymentURL is the gateway's hosted payment page for paid plans, or the new
// storefront's own URL for the free plan.
type CreateOrderResult struct {
	OrderID     string
	OrderNumber string
	PaymentURL  string
}

// ListOptions filters the admin order listing.
type ListOptions struct {
	Status string
	Limit  int
	Offset int
}
