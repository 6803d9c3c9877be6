package derive

// Fallbacks for fields a transcript did not supply.
const (
	DefaultStartLocation   = "Home Office"
	DefaultEndLocation     = "Client Location"
	DefaultMeetingPurpose  = "Business meeting"
	DefaultAttendees       = "Client"
	DefaultFuelStop        = "Gas Station"
	DefaultMealTitle       = "Business Meal"
	DefaultMealLocation    = "Restaurant"
	DefaultLodgingTitle    = "Hotel Stay"
	DefaultLodgingLocation = "City"
	DefaultMiscTitle       = "Business Expense"
	DefaultMiscPurpose     = "Business purpose"
)

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
