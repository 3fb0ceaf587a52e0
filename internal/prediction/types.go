package prediction

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "L"
	GenderFemale Gender = "P"
)

// ParseGender maps a submitted gender value to its code. Missing or
// unrecognised values fall back to the male code.
func ParseGender(raw string) Gender {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "p", "perempuan":
		return GenderFemale
	case "l", "laki-laki", "laki":
		return GenderMale
	}
	return Defaults.Gender
}

// Label is the Indonesian display name.
func (g Gender) Label() string {
	if g == GenderFemale {
		return "Perempuan"
	}
	return "Laki-laki"
}

// Measurement always encodes with a decimal point so the predictor reads a float.
type Measurement float64

func (m Measurement) MarshalJSON() ([]byte, error) {
	f := float64(m)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// Request is the body sent to the predictor.
type Request struct {
	AgeMonths int         `json:"usia_bulan"`
	HeightCm  Measurement `json:"tinggi_badan"`
	WeightKg  Measurement `json:"berat_badan"`
	Gender    Gender      `json:"gender"`
}

// Confidence accepts either a JSON string ("82%") or a number (0.82).
type Confidence string

func (c *Confidence) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Confidence(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = Confidence(n.String())
	return nil
}

func (c Confidence) String() string { return string(c) }

// InputEcho is what the predictor reports it received.
type InputEcho struct {
	AgeMonths int     `json:"usia"`
	HeightCm  float64 `json:"tinggi"`
	WeightKg  float64 `json:"berat"`
	Gender    string  `json:"gender"`
}

type Result struct {
	Status        string     `json:"status"`
	Confidence    Confidence `json:"confidence"`
	Message       string     `json:"message"`
	InputReceived *InputEcho `json:"input_received,omitempty"`
}

func (r Result) Severity() Severity { return Classify(r.Status) }
