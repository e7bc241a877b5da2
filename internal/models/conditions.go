package models

// rainCodes is the closed set of WeatherAPI.com condition codes that carry
// precipitation as rain: drizzle, rain, sleet, and ice pellets in all
// intensities. Thunder and snow codes are deliberately not included.
var rainCodes = map[int]struct{}{
	1063: {}, // patchy rain possible
	1069: {}, // patchy sleet possible
	1072: {}, // patchy freezing drizzle possible
	1150: {}, // patchy light drizzle
	1153: {}, // light drizzle
	1168: {}, // freezing drizzle
	1171: {}, // heavy freezing drizzle
	1180: {}, // patchy light rain
	1183: {}, // light rain
	1186: {}, // moderate rain at times
	1189: {}, // moderate rain
	1192: {}, // heavy rain at times
	1195: {}, // heavy rain
	1198: {}, // light freezing rain
	1201: {}, // moderate or heavy freezing rain
	1204: {}, // light sleet
	1207: {}, // moderate or heavy sleet
	1237: {}, // ice pellets
	1240: {}, // light rain shower
	1243: {}, // moderate or heavy rain shower
	1246: {}, // torrential rain shower
	1249: {}, // light sleet showers
	1252: {}, // moderate or heavy sleet showers
	1261: {}, // light showers of ice pellets
	1264: {}, // moderate or heavy showers of ice pellets
}

// IsRainy reports whether the condition code denotes rain-bearing weather.
func IsRainy(code int) bool {
	_, ok := rainCodes[code]
	return ok
}
