// internal/loan/chat-assistant/models.go
package chatassistant

const (
	WelcomeID      = "welcome"
	WelcomeMessage = "Hello! I'm your loan assistant. I can help you with loan eligibility, CIBIL scores, documents needed, interest rates, and more. What would you like to know?"
	// FallbackMessage replaces any reply that failed or came back empty.
	FallbackMessage = "I'm having trouble connecting right now. Please try again or use our loan calculator above."
)

var quickActions = []string{
	"Loan eligibility criteria",
	"CIBIL score requirements",
	"Required documents",
	"Interest rates",
	"Processing time",
}

// QuickActions returns the suggested starter questions.
func QuickActions() []string {
	return append([]string(nil), quickActions...)
}
