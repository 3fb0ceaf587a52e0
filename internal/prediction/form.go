package prediction

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Form field names on the page.
const (
	FieldAge    = "usia"
	FieldHeight = "tinggi"
	FieldWeight = "berat"
	FieldGender = "gender"
)

// FieldDefaults are the values used when a field is missing or does not parse.
type FieldDefaults struct {
	AgeMonths int
	HeightCm  float64
	WeightKg  float64
	Gender    Gender
}

// Defaults applies to every submission.
var Defaults = FieldDefaults{
	AgeMonths: 0,
	HeightCm:  0,
	WeightKg:  0,
	Gender:    GenderMale,
}

// Form holds the raw submitted strings so the page can echo them back.
type Form struct {
	Age    string
	Height string
	Weight string
	Gender string
}

func FormFromValues(v url.Values) Form {
	return Form{
		Age:    v.Get(FieldAge),
		Height: v.Get(FieldHeight),
		Weight: v.Get(FieldWeight),
		Gender: v.Get(FieldGender),
	}
}

// GenderCode is the code the submitted gender maps to, for re-selecting it.
func (f Form) GenderCode() string { return string(ParseGender(f.Gender)) }

// Request parses the form into a predictor request.
func (f Form) Request() Request {
	return Request{
		AgeMonths: parseInt(f.Age, Defaults.AgeMonths),
		HeightCm:  Measurement(parseFloat(f.Height, Defaults.HeightCm)),
		WeightKg:  Measurement(parseFloat(f.Weight, Defaults.WeightKg)),
		Gender:    ParseGender(f.Gender),
	}
}

func parseInt(raw string, def int) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > math.MaxInt32 || n < math.MinInt32 {
			return def
		}
		return int(n)
	}
	// "12.7" truncates to 12
	f := parseFloat(s, math.NaN())
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

func parseFloat(raw string, def float64) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}
