package checkout

import "context"

// CatalogRoot is where a finished checkout sends the shopper.
const CatalogRoot = "/"

// Navigator moves the shopper to another view and returns the path it
// resolved to.
type Navigator interface {
	Navigate(ctx context.Context, path string) string
}

// PathNavigator returns the requested path unchanged. The HTTP layer turns
// it into a redirect.
type PathNavigator struct{}

func (PathNavigator) Navigate(_ context.Context, path string) string {
	return path
}

// SuccessDialog is the acknowledgment shown once an order is placed.
type SuccessDialog struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ConfirmText string `json:"confirm_text"`
	Variant     string `json:"variant"`
	Icon        string `json:"icon"`
}

// OrderPlacedDialog is the success acknowledgment. Its only action leads to
// the catalog root.
var OrderPlacedDialog = SuccessDialog{
	Title:       "Order Placed Successfully! 🎉",
	Message:     "Thank you for your order! We have received your request and will process it shortly. You will receive a confirmation email with your order details.",
	ConfirmText: "Continue Shopping",
	Variant:     "success",
	Icon:        "✅",
}
