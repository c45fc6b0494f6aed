package controls

// Display strings are Italian, matching the deployment this dashboard
// was built for. Translation tables live here so adapters stay free of
// string literals.

// weatherConditions maps hub condition codes to display text.
var weatherConditions = map[string]string{
	"clear-night":     "Sereno",
	"cloudy":          "Nuvoloso",
	"fog":             "Nebbia",
	"hail":            "Grandine",
	"lightning":       "Temporale",
	"lightning-rainy": "Temporale e pioggia",
	"partlycloudy":    "Parzialmente nuvoloso",
	"pouring":         "Diluvio",
	"rainy":           "Pioggia",
	"snowy":           "Neve",
	"snowy-rainy":     "Neve mista a pioggia",
	"sunny":           "Soleggiato",
	"windy":           "Ventoso",
	"windy-variant":   "Ventoso",
	"exceptional":     "Eccezionale",
}

// weatherIcons maps hub condition codes to icon identifiers.
var weatherIcons = map[string]string{
	"clear-night":     "moon",
	"cloudy":          "cloud",
	"fog":             "cloud-fog",
	"hail":            "cloud-hail",
	"lightning":       "cloud-lightning",
	"lightning-rainy": "cloud-lightning",
	"partlycloudy":    "cloud-sun",
	"pouring":         "cloud-rain-wind",
	"rainy":           "cloud-rain",
	"snowy":           "cloud-snow",
	"snowy-rainy":     "cloud-sleet",
	"sunny":           "sun",
	"windy":           "wind",
	"windy-variant":   "wind",
	"exceptional":     "alert-triangle",
}

// hvacModes maps climate modes to display text.
var hvacModes = map[string]string{
	"off":       "Spento",
	"heat":      "Riscaldamento",
	"cool":      "Raffrescamento",
	"heat_cool": "Auto caldo/freddo",
	"auto":      "Automatico",
	"dry":       "Deumidificazione",
	"fan_only":  "Solo ventilazione",
}

// TranslateWeather returns the display text for a condition code,
// falling back to the raw code.
func TranslateWeather(condition string) string {
	if s, ok := weatherConditions[condition]; ok {
		return s
	}
	return condition
}

// WeatherIcon returns the icon for a condition code.
func WeatherIcon(condition string) string {
	if s, ok := weatherIcons[condition]; ok {
		return s
	}
	return "cloud"
}

// translateHVAC returns the display text for an hvac mode.
func translateHVAC(mode string) string {
	if s, ok := hvacModes[mode]; ok {
		return s
	}
	return mode
}

// onOff renders a boolean state with gendered Italian adjectives; the
// feminine forms fit luce/presa/tapparella, the nouns these cards use.
func onOff(on bool) string {
	if on {
		return "Accesa"
	}
	return "Spenta"
}

// binarySensorText maps device classes to open/closed style wording.
func binarySensorText(deviceClass string, on bool) string {
	switch deviceClass {
	case "door", "window", "garage_door", "opening":
		if on {
			return "Aperta"
		}
		return "Chiusa"
	case "motion", "occupancy", "presence":
		if on {
			return "Rilevato"
		}
		return "Libero"
	case "moisture":
		if on {
			return "Perdita rilevata"
		}
		return "Asciutto"
	case "smoke", "gas", "problem":
		if on {
			return "Allarme"
		}
		return "Normale"
	default:
		if on {
			return "Attivo"
		}
		return "Inattivo"
	}
}
