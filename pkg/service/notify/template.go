package notify

import (
	"bytes"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
)

// Default confirmation templates
const (
	DefaultSubjectTemplate = "Αίτημα: {{.ID}}"
	DefaultBodyTemplate    = "Γεια σας {{.Name}},\nΟ κωδικός αιτήματός σας είναι: {{.ID}}"
)

// Templates renders the confirmation sent to a requester
type Templates struct {
	subject *template.Template
	body    *template.Template
}

// templateData is what the templates can reference
type templateData struct {
	ID          string
	Name        string
	Category    string
	Status      string
	CreatedAt   string
	StatusLabel string
}

// NewTemplates parses subject and body; empty strings select the defaults
func NewTemplates(subject, body string) (*Templates, error) {
	if subject == "" {
		subject = DefaultSubjectTemplate
	}
	if body == "" {
		body = DefaultBodyTemplate
	}

	st, err := template.New("subject").Option("missingkey=error").Parse(subject)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid subject template")
	}
	bt, err := template.New("body").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid body template")
	}
	return &Templates{subject: st, body: bt}, nil
}

// Render produces the subject and body for t
func (x *Templates) Render(t *model.Ticket) (string, string, error) {
	data := templateData{
		ID:          string(t.ID),
		Name:        t.RequesterName,
		Category:    string(t.Category),
		Status:      string(t.Status),
		StatusLabel: t.Status.Label(),
		CreatedAt:   t.CreatedAt.Format("2006-01-02 15:04"),
	}

	var subject, body bytes.Buffer
	if err := x.subject.Execute(&subject, data); err != nil {
		return "", "", goerr.Wrap(err, "failed to render subject", goerr.V(model.TicketIDKey, t.ID))
	}
	if err := x.body.Execute(&body, data); err != nil {
		return "", "", goerr.Wrap(err, "failed to render body", goerr.V(model.TicketIDKey, t.ID))
	}
	return subject.String(), body.String(), nil
}
