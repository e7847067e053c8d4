package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

const (
	verificationSubject = "Please verify your email"
	resetSubject        = "Password reset request"
)

var (
	verificationText = texttemplate.Must(texttemplate.New("verification").Parse(
		`Hi {{.Name}},

Welcome to Project Hub! Verify your email address by opening the link below:

{{.Link}}

The link expires in {{.Minutes}} minutes. If you did not create an account, ignore this email.
`))

	verificationHTML = htmltemplate.Must(htmltemplate.New("verification").Parse(
		`<p>Hi {{.Name}},</p>` +
			`<p>Welcome to Project Hub! Verify your email address by clicking the button below.</p>` +
			`<p><a href="{{.Link}}">Verify your email</a></p>` +
			`<p>The link expires in {{.Minutes}} minutes. If you did not create an account, ignore this email.</p>`))

	resetText = texttemplate.Must(texttemplate.New("reset").Parse(
		`Hi {{.Name}},

We received a request to reset your password. Open the link below to choose a new one:

{{.Link}}

The link expires in {{.Minutes}} minutes. If you did not request this, ignore this email.
`))

	resetHTML = htmltemplate.Must(htmltemplate.New("reset").Parse(
		`<p>Hi {{.Name}},</p>` +
			`<p>We received a request to reset your password.</p>` +
			`<p><a href="{{.Link}}">Reset password</a></p>` +
			`<p>The link expires in {{.Minutes}} minutes. If you did not request this, ignore this email.</p>`))
)

type templateData struct {
	Name    string
	Link    string
	Minutes int
}

func VerificationEmail(to string, name string, link string, ttl time.Duration) (Message, error) {
	return render(to, verificationSubject, verificationText, verificationHTML, templateData{Name: name, Link: link, Minutes: int(ttl.Minutes())})
}

func PasswordResetEmail(to string, name string, link string, ttl time.Duration) (Message, error) {
	return render(to, resetSubject, resetText, resetHTML, templateData{Name: name, Link: link, Minutes: int(ttl.Minutes())})
}

func render(to string, subject string, text *texttemplate.Template, html *htmltemplate.Template, data templateData) (Message, error) {
	var textBuf, htmlBuf bytes.Buffer
	if err := text.Execute(&textBuf, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", text.Name(), err)
	}
	if err := html.Execute(&htmlBuf, data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", html.Name(), err)
	}

	return Message{To: to, Subject: subject, Text: textBuf.String(), HTML: htmlBuf.String()}, nil
}
