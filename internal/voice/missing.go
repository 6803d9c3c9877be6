package voice

// MissingFields names the draft fields the transcript did not supply. The
// list is a soft hint for the user; derivation fills these with defaults.
func MissingFields(d Draft) []string {
	var out []string
	add := func(empty bool, name string) {
		if empty {
			out = append(out, name)
		}
	}
	switch d := d.(type) {
	case MileageDraft:
		add(d.StartOdometer.IsZero(), "startOdometer")
		add(d.EndOdometer.IsZero(), "endOdometer")
		add(d.StartLocation == "", "startLocation")
		add(d.EndLocation == "", "endLocation")
		add(d.Attendees == "", "attendees")
		add(d.BusinessPurpose == "", "businessPurpose")
	case FuelDraft:
		add(d.Amount.IsZero(), "amount")
		add(d.Location == "", "location")
		add(d.OdometerReading.IsZero(), "odometerReading")
	case MealDraft:
		add(d.Amount.IsZero(), "amount")
		add(d.Location == "", "location")
		add(d.Attendees == "", "attendees")
		add(d.BusinessPurpose == "", "businessPurpose")
	case AccommodationDraft:
		add(d.Amount.IsZero(), "amount")
		add(d.Title == "", "title")
		add(d.Location == "", "location")
	case MiscDraft:
		add(d.Amount.IsZero(), "amount")
		add(d.Title == "", "title")
		add(d.BusinessPurpose == "", "businessPurpose")
	case GenericDraft:
		add(d.Amount.IsZero(), "amount")
	}
	return out
}
