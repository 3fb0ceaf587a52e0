// Package web renders the Form-Relay page.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/LonelyIsle/stunting-detector/internal/prediction"
)

//go:embed templates/*.html
var templateFS embed.FS

type View struct {
	page    *template.Template
	printer *message.Printer
	now     func() time.Time
}

func NewView() (*View, error) {
	t, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, err
	}
	return &View{
		page:    t,
		printer: message.NewPrinter(language.Indonesian),
		now:     time.Now,
	}, nil
}

// Page is everything the template needs for one render.
type Page struct {
	Form      prediction.Form
	CSRFField string
	CSRFToken string
	Error     string
	Result    *ResultView
	Year      int
}

type ResultView struct {
	Status     string
	Confidence string
	Message    string
	Severity   string
	Stunted    bool
	Received   string
}

// NewPage maps an outcome onto the page. Failures show only the banner.
func (v *View) NewPage(form prediction.Form, out prediction.Outcome, csrfField, csrfToken string) Page {
	p := Page{
		Form:      form,
		CSRFField: csrfField,
		CSRFToken: csrfToken,
		Year:      v.now().Year(),
	}
	switch out.Kind {
	case prediction.OutcomeFailure:
		p.Error = out.Message
	case prediction.OutcomeSuccess:
		sev := out.Result.Severity()
		p.Result = &ResultView{
			Status:     out.Result.Status,
			Confidence: out.Result.Confidence.String(),
			Message:    out.Result.Message,
			Severity:   sev.String(),
			Stunted:    sev == prediction.SeverityStunted,
			Received:   v.summary(out.Result.InputReceived),
		}
	}
	return p
}

func (v *View) summary(in *prediction.InputEcho) string {
	if in == nil {
		return ""
	}
	return v.printer.Sprintf("%d bulan, %.1f cm, %.1f kg, %s", in.AgeMonths, in.HeightCm, in.WeightKg, in.Gender)
}

// Render executes the template into a buffer first so a failed render never
// leaves a half-written page.
func (v *View) Render(w io.Writer, p Page) error {
	var buf bytes.Buffer
	if err := v.page.Execute(&buf, p); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
