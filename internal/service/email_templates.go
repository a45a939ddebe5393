package service

import "fmt"

func verificationEmailTemplate(name, verifyURL, appName string) (string, string) {
	subject := fmt.Sprintf("Verify your email for %s", appName)
	body := fmt.Sprintf(`Hi %s,

Welcome to %s! Please verify your email address by clicking this link:
%s

This link expires in 24 hours.

If you didn't create an account, you can safely ignore this email.

Best,
The %s Team`, name, appName, verifyURL, appName)

	return subject, body
}

func forgotPasswordEmailTemplate(name, resetURL, appName string) (string, string) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`Hi %s,

You requested to reset your password. Click this link to choose a new one:
%s

This link expires in 1 hour and can only be used once.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The %s Team`, name, resetURL, appName)

	return subject, body
}

func congratsEmailTemplate(name, goalName, completedAt, appName string) (string, string, string) {
	subject := fmt.Sprintf("🎉 Congratulations! You completed '%s'", goalName)
	body := fmt.Sprintf(`Congrats %s!

You completed '%s' on %s.
Keep up the great work!

Best,
The %s Team`, name, goalName, completedAt, appName)

	html := fmt.Sprintf(`<html>
  <body style="font-family: -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif;">
    <h2>🎉 Congratulations, %s!</h2>
    <p>You completed <strong>%s</strong> on <strong>%s</strong>.</p>
    <p>Keep up the great work!</p>
    <p>Best,<br>The %s Team</p>
  </body>
</html>`, name, goalName, completedAt, appName)

	return subject, body, html
}
