package api

// Response represents the top-level Al Adhan API response.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

// Data holds the prayer timings, date info, and metadata.
type Data struct {
	Timings Timings  `json:"timings"`
	Date    DateInfo `json:"date"`
	Meta    Meta     `json:"meta"`
}

// Timings contains the six source times as HH:MM strings.
// The API may append a timezone suffix like " (BST)"; the prayer package strips it.
// Midnight and the night thirds are derived locally and therefore not decoded here.
type Timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

// DateInfo contains date representations.
type DateInfo struct {
	Readable  string        `json:"readable"`
	Hijri     HijriDate     `json:"hijri"`
	Gregorian GregorianDate `json:"gregorian"`
}

// HijriDate represents the Hijri (Islamic) date from the API response.
type HijriDate struct {
	Day   string     `json:"day"`
	Month HijriMonth `json:"month"`
	Year  string     `json:"year"`
}

// HijriMonth represents the month in the Hijri calendar.
type HijriMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"` // English name, e.g. "Shaʿbān"
	Ar     string `json:"ar"` // Arabic name
}

// Format returns the Hijri date as "DD MonthName YYYY AH" using the
// Arabic month name when lang is "ar".
func (h HijriDate) Format(lang string) string {
	month := h.Month.En
	if lang == "ar" && h.Month.Ar != "" {
		month = h.Month.Ar
	}
	if h.Day == "" || month == "" || h.Year == "" {
		return ""
	}
	if lang == "ar" {
		return h.Day + " " + month + " " + h.Year + " هـ"
	}
	return h.Day + " " + month + " " + h.Year + " AH"
}

// GregorianDate represents the Gregorian date from the API response.
type GregorianDate struct {
	Date string `json:"date"` // e.g. "28-02-2026"
}

// Meta contains request metadata returned by the API.
type Meta struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Method    MethodInfo `json:"method"`
}

// MethodInfo identifies the calculation method used.
type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
