package weather

// Condition is a display label for a WMO weather code.
type Condition struct {
	Label string
	Icon  string
}

// UnknownCondition is returned for codes missing from the table.
var UnknownCondition = Condition{Label: "Unknown", Icon: "🌡️"}

var conditions = map[int]Condition{
	0:  {Label: "Clear", Icon: "☀️"},
	1:  {Label: "Mostly Clear", Icon: "🌤️"},
	2:  {Label: "Partly Cloudy", Icon: "⛅"},
	3:  {Label: "Overcast", Icon: "☁️"},
	45: {Label: "Foggy", Icon: "🌫️"},
	48: {Label: "Foggy", Icon: "🌫️"},
	51: {Label: "Light Drizzle", Icon: "🌧️"},
	53: {Label: "Moderate Drizzle", Icon: "🌧️"},
	55: {Label: "Heavy Drizzle", Icon: "🌧️"},
	61: {Label: "Light Rain", Icon: "🌧️"},
	63: {Label: "Moderate Rain", Icon: "🌧️"},
	65: {Label: "Heavy Rain", Icon: "⛈️"},
	80: {Label: "Light Showers", Icon: "🌧️"},
	81: {Label: "Moderate Showers", Icon: "⛈️"},
	82: {Label: "Violent Showers", Icon: "⛈️"},
	95: {Label: "Thunderstorm", Icon: "⛈️"},
}

// ConditionFor maps a weather code to its condition.
func ConditionFor(code int) Condition {
	if c, ok := conditions[code]; ok {
		return c
	}

	return UnknownCondition
}
