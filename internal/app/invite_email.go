package app

import (
	"bytes"
	"html/template"
	"net/url"

	"github.com/google/uuid"
)

type inviteEmail struct {
	TargetName  string
	SourceName  string
	Message     *string
	TargetEmail string
	RegisterURL string
}

var inviteTemplate = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #667eea; color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
.content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
.button { display: inline-block; padding: 12px 30px; background: #667eea; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="header"><h1>EatWise Invitation</h1></div>
<div class="content">
<h2>You've been invited!</h2>
<p>Hello {{.TargetName}},</p>
<p><strong>{{.SourceName}}</strong> has invited you to join EatWise!</p>
{{- with .Message}}
<p><em>"{{.}}"</em></p>
{{- end}}
<p><strong>EatWise</strong> helps you track your daily calorie intake and stay within your goals.</p>
<p><a href="{{.RegisterURL}}" class="button">Join EatWise Now</a></p>
</div>
<div class="footer"><p>This invitation was sent to {{.TargetEmail}}</p></div>
</body>
</html>
`))

func renderInviteEmail(data inviteEmail) (string, error) {
	var buf bytes.Buffer
	if err := inviteTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// registerURL appends the target email and invite id to base.
func registerURL(base, email string, inviteID uuid.UUID) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("refId", inviteID.String())
	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + q.Encode()
	}
	existing := u.Query()
	for k, v := range q {
		existing[k] = v
	}
	u.RawQuery = existing.Encode()
	return u.String()
}
