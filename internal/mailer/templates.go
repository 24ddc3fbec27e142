package mailer

import "fmt"

// Message is a rendered email, ready for any Mailer implementation.
type Message struct {
	Subject string
	HTML    string
}

// VerificationEmail renders the account-verification mail. The link
// embeds the single-use token.
func VerificationEmail(username, baseURL, token string) Message {
	link := fmt.Sprintf("%s/verify-email?token=%s", baseURL, token)
	return Message{
		Subject: "Verify your account - Sheily AI",
		HTML: fmt.Sprintf(`<h2>Welcome to Sheily AI, %s!</h2>
<p>To activate your account, click the link below:</p>
<a href=%q style="background-color: #4F46E5; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Verify Email</a>
<p>If the button does not work, copy and paste this URL into your browser:</p>
<p>%s</p>`, username, link, link),
	}
}

// PasswordResetEmail renders the password-recovery mail. The link is
// valid for one hour.
func PasswordResetEmail(username, baseURL, token string) Message {
	link := fmt.Sprintf("%s/reset-password?token=%s", baseURL, token)
	return Message{
		Subject: "Reset your password - Sheily AI",
		HTML: fmt.Sprintf(`<h2>Reset your password, %s</h2>
<p>Click the link below to set a new password:</p>
<a href=%q style="background-color: #DC2626; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Reset Password</a>
<p>If the button does not work, copy and paste this URL into your browser:</p>
<p>%s</p>
<p>This link expires in 1 hour.</p>`, username, link, link),
	}
}
