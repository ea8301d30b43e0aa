package prayer

// Supported display languages.
const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

var displayNames = map[string]map[Event]string{
	LangEnglish: {
		Fajr:      "Fajr",
		Sunrise:   "Sunrise",
		Dhuhr:     "Dhuhr",
		Asr:       "Asr",
		Maghrib:   "Maghrib",
		Isha:      "Isha",
		Midnight:  "Islamic Midnight",
		LastThird: "Last Third of Night",
	},
	LangArabic: {
		Fajr:      "الفجر",
		Sunrise:   "الشروق",
		Dhuhr:     "الظهر",
		Asr:       "العصر",
		Maghrib:   "المغرب",
		Isha:      "العشاء",
		Midnight:  "منتصف الليل الشرعي",
		LastThird: "الثلث الأخير من الليل",
	},
}

// ShortNames maps events to compact abbreviations for status bars.
var ShortNames = map[Event]string{
	Fajr:      "F",
	Sunrise:   "S",
	Dhuhr:     "D",
	Asr:       "A",
	Maghrib:   "M",
	Isha:      "I",
	Midnight:  "Mi",
	LastThird: "L3",
}

// DisplayName returns the human-readable name of an event in lang, falling
// back to English and then to the raw event name.
func DisplayName(name Event, lang string) string {
	if names, ok := displayNames[lang]; ok {
		if s, ok := names[name]; ok {
			return s
		}
	}
	if s, ok := displayNames[LangEnglish][name]; ok {
		return s
	}
	return string(name)
}

// ValidLang reports whether lang has a name table.
func ValidLang(lang string) bool {
	_, ok := displayNames[lang]
	return ok
}
