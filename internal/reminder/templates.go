package reminder

import (
	"bytes"
	"fmt"
	"html/template"
)

// TemplateData is what every reminder template can reference.
type TemplateData struct {
	DisplayName       string
	FormattedDeadline string
}

// Templates renders reminder bodies by index.
type Templates struct {
	set []*template.Template
}

const layout = `<!doctype html>
<html>
<body style="font-family: Georgia, serif; color: #3b3b3b; max-width: 560px; margin: 0 auto;">
{{block "content" .}}{{end}}
<p style="margin-top: 32px;">With love,<br>Sam &amp; Alex</p>
</body>
</html>`

var bodies = []string{
	// 0: RSVP reminder
	`{{define "content"}}<p>Dear {{.DisplayName}},</p>
<p>We would love to celebrate with you! If you have not yet told us whether you can make it,
please RSVP{{if .FormattedDeadline}} by <strong>{{.FormattedDeadline}}</strong>{{end}}.</p>{{end}}`,

	// 1: final details
	`{{define "content"}}<p>Dear {{.DisplayName}},</p>
<p>The big day is almost here. Travel notes, the day's schedule and venue directions are on the
info page.{{if .FormattedDeadline}} Any changes to your RSVP are welcome until <strong>{{.FormattedDeadline}}</strong>.{{end}}</p>{{end}}`,

	// 2: general announcement
	`{{define "content"}}<p>Dear {{.DisplayName}},</p>
<p>We have posted an update on the wedding website. Take a look when you have a moment.</p>{{end}}`,
}

func DefaultTemplates() *Templates {
	set := make([]*template.Template, 0, len(bodies))
	for i, body := range bodies {
		t := template.Must(template.New(fmt.Sprintf("reminder-%d", i)).Parse(layout))
		set = append(set, template.Must(t.Parse(body)))
	}
	return &Templates{set: set}
}

func (t *Templates) Has(index int) bool {
	return index >= 0 && index < len(t.set)
}

func (t *Templates) Render(index int, data TemplateData) (string, error) {
	if !t.Has(index) {
		return "", fmt.Errorf("unknown template index %d", index)
	}
	var buf bytes.Buffer
	if err := t.set[index].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return buf.String(), nil
}
