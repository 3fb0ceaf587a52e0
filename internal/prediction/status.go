package prediction

// Status labels produced by the predictor.
const (
	StatusSeverelyStunted = "Sangat Pendek"
	StatusStunted         = "Pendek"
	StatusStunting        = "Stunting"
	StatusNormal          = "Normal"
	StatusTall            = "Tinggi"
	StatusUnknown         = "Unknown"
)

type Severity int

const (
	SeverityHealthy Severity = iota
	SeverityStunted
)

func (s Severity) String() string {
	if s == SeverityStunted {
		return "stunted"
	}
	return "healthy"
}

var stuntedLabels = map[string]struct{}{
	StatusSeverelyStunted: {},
	StatusStunted:         {},
	StatusStunting:        {},
}

// Classify matches status exactly against the stunted label set.
func Classify(status string) Severity {
	if _, ok := stuntedLabels[status]; ok {
		return SeverityStunted
	}
	return SeverityHealthy
}

// StuntedLabels lists the labels that Classify treats as stunted.
func StuntedLabels() []string {
	return []string{StatusSeverelyStunted, StatusStunted, StatusStunting}
}
