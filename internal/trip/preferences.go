package trip

import "slices"

// Preferences is the trip form record. Setters return a modified copy and never
// mutate the receiver; no field is validated.
type Preferences struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Budget      string   `json:"budget"`
	TravelStyle string   `json:"travelStyle"`
	Interests   []string `json:"interests"`
}

// NewPreferences returns the form defaults: everything empty except a mid-range budget.
func NewPreferences() Preferences {
	return Preferences{Budget: BudgetMid, Interests: []string{}}
}

// WithDestination returns a copy with Destination set to v.
func (p Preferences) WithDestination(v string) Preferences {
	p.Interests = slices.Clone(p.Interests)
	p.Destination = v
	return p
}

// WithStartDate returns a copy with StartDate set to v. Dates are free text.
func (p Preferences) WithStartDate(v string) Preferences {
	p.Interests = slices.Clone(p.Interests)
	p.StartDate = v
	return p
}

// WithEndDate returns a copy with EndDate set to v.
func (p Preferences) WithEndDate(v string) Preferences {
	p.Interests = slices.Clone(p.Interests)
	p.EndDate = v
	return p
}

// WithBudget returns a copy with Budget set to v, even when v is not a
// known budget level.
func (p Preferences) WithBudget(v string) Preferences {
	p.Interests = slices.Clone(p.Interests)
	p.Budget = v
	return p
}

// WithTravelStyle returns a copy with TravelStyle set to v.
func (p Preferences) WithTravelStyle(v string) Preferences {
	p.Interests = slices.Clone(p.Interests)
	p.TravelStyle = v
	return p
}

// ToggleInterest removes interest when present, otherwise appends it.
// The order of the remaining interests is kept.
func (p Preferences) ToggleInterest(interest string) Preferences {
	next := make([]string, 0, len(p.Interests)+1)
	found := false
	for _, i := range p.Interests {
		if i == interest {
			found = true
			continue
		}
		next = append(next, i)
	}
	if !found {
		next = append(next, interest)
	}
	p.Interests = next
	return p
}

// HasInterest reports whether interest is currently selected.
func (p Preferences) HasInterest(interest string) bool {
	return slices.Contains(p.Interests, interest)
}
