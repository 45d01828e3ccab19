package mailer

import (
	"bytes"
	"html/template"
)

var accessCodeTemplate = template.Must(template.New("access_code").Parse(`<html>
<body>
  <p>Hola {{.Name}},</p>
  <p>Tu código de acceso a la plataforma {{.AppName}} es:</p>
  <p><strong>{{.Code}}</strong></p>
  <p>Ingresa en <a href="{{.URL}}">{{.URL}}</a> con tu correo {{.Email}} y este código.</p>
  <p>El código expira en unos minutos y solo puede usarse una vez.</p>
</body>
</html>`))

var feedbackTemplate = template.Must(template.New("feedback").Parse(`<html>
<body>
  <h3>{{.Title}}</h3>
  <p>{{.Comment}}</p>
  <p>— Feedback del sistema {{.AppName}}</p>
</body>
</html>`))

type AccessCodeEmail struct {
	Name    string
	Email   string
	Code    string
	URL     string
	AppName string
}

type FeedbackEmail struct {
	Title   string
	Comment string
	AppName string
}

// RenderAccessCode produces the access-code email body.
func RenderAccessCode(data AccessCodeEmail) (string, error) {
	if data.Name == "" {
		data.Name = "Usuario"
	}
	var buf bytes.Buffer
	if err := accessCodeTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderFeedback produces the feedback email body.
func RenderFeedback(data FeedbackEmail) (string, error) {
	var buf bytes.Buffer
	if err := feedbackTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
