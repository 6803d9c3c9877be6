package voice

// Messages shown or spoken back to the user.
const (
	MsgMileageAdded   = "Mileage entry added successfully"
	MsgExpenseAdded   = "Expense added successfully"
	MsgProcessFailed  = "Sorry, I couldn't process that. Please try again."
	MsgNoInput        = "No voice input detected"
	MsgPromptFallback = "Please describe the expense, including the amount."
)

var prompts = map[Intent]string{
	IntentMileage:       "Please say your departure odometer reading, destination, and meeting details.",
	IntentFuel:          "Please say the fuel cost, location, and odometer reading.",
	IntentMeal:          "Please say the meal cost, restaurant name, and who you're meeting with.",
	IntentAccommodation: "Please say the hotel cost, hotel name, and location.",
	IntentMiscellaneous: "Please say the expense amount, description, and business purpose.",
}

// Prompt returns the instruction spoken when capture starts for intent.
func Prompt(intent Intent) string {
	if p, ok := prompts[intent]; ok {
		return p
	}
	return MsgPromptFallback
}

// Confirmation returns the message shown after a record of intent is saved.
func Confirmation(intent Intent) string {
	if intent == IntentMileage {
		return MsgMileageAdded
	}
	return MsgExpenseAdded
}
