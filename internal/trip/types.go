package trip

// Budget tiers offered by the preference form.
const (
	BudgetLow    = "budget"
	BudgetMid    = "mid-range"
	BudgetLuxury = "luxury"
)

// Budgets lists the selectable budget tiers in display order.
var Budgets = []string{BudgetLow, BudgetMid, BudgetLuxury}

// TravelStyles lists the six named travel styles.
var TravelStyles = []string{
	"Adventurous",
	"Relaxing",
	"Cultural",
	"Family-friendly",
	"Luxury",
	"Budget-friendly",
}

// InterestOptions lists the fixed interest choices.
var InterestOptions = []string{
	"History",
	"Nature",
	"Food",
	"Nightlife",
	"Art",
	"Shopping",
	"Photography",
	"Sports",
	"Music",
	"Architecture",
}

// Coordinates is a (lat, lng) pair.
type Coordinates [2]float64

// Lat returns the latitude.
func (c Coordinates) Lat() float64 { return c[0] }

// Lng returns the longitude.
func (c Coordinates) Lng() float64 { return c[1] }

// Location is a named point on the map.
type Location struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Activity is a single scheduled entry within a day.
type Activity struct {
	Time        string   `json:"time"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    Location `json:"location"`
}

// Day groups the activities planned for one date.
type Day struct {
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// ItineraryData is the day-by-day plan stored alongside an itinerary.
type ItineraryData struct {
	Days []Day `json:"days"`
}

// Itinerary is the persisted trip plan generated from a set of preferences.
type Itinerary struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Destination   string        `json:"destination"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	Budget        string        `json:"budget"`
	TravelStyle   string        `json:"travel_style"`
	Interests     []string      `json:"interests"`
	CreatedAt     string        `json:"created_at"`
	ItineraryData ItineraryData `json:"itinerary_data"`
}

// Activities flattens every activity in day order.
func (it *Itinerary) Activities() []Activity {
	var out []Activity
	for _, d := range it.ItineraryData.Days {
		out = append(out, d.Activities...)
	}
	return out
}
