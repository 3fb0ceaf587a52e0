package prediction

// OutcomeKind tells which arm of Outcome is set.
type OutcomeKind int

const (
	OutcomeIdle OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
)

// FailureKind classifies a failed submission.
type FailureKind int

const (
	FailureUnreachable FailureKind = iota
	FailureServiceReported
	FailureMalformed
	FailureFormExpired
	FailureRateLimited
)

func (k FailureKind) String() string {
	switch k {
	case FailureUnreachable:
		return "unreachable"
	case FailureServiceReported:
		return "service_reported"
	case FailureMalformed:
		return "malformed"
	case FailureFormExpired:
		return "form_expired"
	case FailureRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// User-facing failure texts.
const (
	MessageUnreachable = "Server AI sedang offline. Pastikan layanan prediksi berjalan."
	ServiceErrorPrefix = "Error dari AI: "
	MessageMalformed   = "Respons dari server AI tidak dapat dibaca."
	MessageFormExpired = "Sesi formulir kedaluwarsa. Silakan kirim ulang."
	MessageRateLimited = "Terlalu banyak permintaan. Silakan coba lagi sebentar lagi."
)

// Outcome is the result of one page request: Idle, Success or Failure.
type Outcome struct {
	Kind    OutcomeKind
	Result  Result
	Failure FailureKind
	Message string
}

func Idle() Outcome { return Outcome{Kind: OutcomeIdle} }

func Success(r Result) Outcome { return Outcome{Kind: OutcomeSuccess, Result: r} }

func Unreachable() Outcome {
	return Outcome{Kind: OutcomeFailure, Failure: FailureUnreachable, Message: MessageUnreachable}
}

func ServiceReported(text string) Outcome {
	return Outcome{Kind: OutcomeFailure, Failure: FailureServiceReported, Message: ServiceErrorPrefix + text}
}

func Malformed() Outcome {
	return Outcome{Kind: OutcomeFailure, Failure: FailureMalformed, Message: MessageMalformed}
}

// FormExpired is shown when the form token is missing or stale.
func FormExpired() Outcome {
	return Outcome{Kind: OutcomeFailure, Failure: FailureFormExpired, Message: MessageFormExpired}
}

func RateLimited() Outcome {
	return Outcome{Kind: OutcomeFailure, Failure: FailureRateLimited, Message: MessageRateLimited}
}

func (o Outcome) Succeeded() bool { return o.Kind == OutcomeSuccess }

func (o Outcome) Failed() bool { return o.Kind == OutcomeFailure }

// Label names the outcome for logs and metrics.
func (o Outcome) Label() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return o.Failure.String()
	}
	return "idle"
}
