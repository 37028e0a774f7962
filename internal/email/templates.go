package email

import (
	"fmt"
	"html"
)

// Message is a rendered email ready to be queued.
type Message struct {
	To      string
	Subject string
	HTML    string
}

func WelcomeMessage(to, appURL string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to Niches Hunter",
		HTML: fmt.Sprintf(`<p>Thanks for joining Niches Hunter.</p>
<p>Browse the latest niches at <a href="%[1]s">%[1]s</a>.</p>`, html.EscapeString(appURL)),
	}
}

func NewsletterWelcomeMessage(to, appURL string) Message {
	return Message{
		To:      to,
		Subject: "You're subscribed to Niches Hunter",
		HTML: fmt.Sprintf(`<p>You will receive new niches in your inbox.</p>
<p><a href="%s">Open Niches Hunter</a></p>`, html.EscapeString(appURL)),
	}
}

func PasswordResetMessage(to, resetURL string) Message {
	return Message{
		To:      to,
		Subject: "Reset your Niches Hunter password",
		HTML: fmt.Sprintf(`<p>Someone asked to reset the password for this account.</p>
<p><a href="%s">Choose a new password</a>. The link expires in one hour.</p>
<p>If this wasn't you, ignore this email.</p>`, html.EscapeString(resetURL)),
	}
}

func AdminSignupMessage(adminAddress, newUserEmail string) Message {
	return Message{
		To:      adminAddress,
		Subject: "New signup: " + newUserEmail,
		HTML:    fmt.Sprintf(`<p>New account created for <b>%s</b>.</p>`, html.EscapeString(newUserEmail)),
	}
}
