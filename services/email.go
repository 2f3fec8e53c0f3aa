package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type EmailService struct {
	apiKey      string
	fromEmail   string
	frontendURL string
}

func NewEmailService(apiKey, fromEmail, frontendURL string) *EmailService {
	return &EmailService{
		apiKey:      apiKey,
		fromEmail:   fromEmail,
		frontendURL: frontendURL,
	}
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	if s.apiKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	payload := map[string]interface{}{
		"from":    fmt.Sprintf("Slateboard <%s>", s.fromEmail),
		"to":      []string{to},
		"subject": subject,
		"html":    htmlBody,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}

	return nil
}

// SendInvitation emails a collaboration invite with the accept link.
func (s *EmailService) SendInvitation(to, inviterName, projectTitle, token string) error {
	invitationURL := fmt.Sprintf("%s/invitation/accept?token=%s", s.frontendURL, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1a1a2e; color: white; padding: 30px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; }
        .button { display: inline-block; background: #e94560; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🎬 Slateboard</h1>
        </div>
        <div class="content">
            <p>Hello,</p>
            <p><strong>%s</strong> invited you to collaborate on <strong>"%s"</strong>.</p>
            <a href="%s" class="button">Accept invitation</a>
            <p style="color: #e74c3c; margin-top: 30px;">This link expires in 7 days.</p>
        </div>
    </div>
</body>
</html>
	`, inviterName, projectTitle, invitationURL)

	return s.send(to, fmt.Sprintf("%s invited you to a production", inviterName), htmlBody)
}

// SendVerification emails the address-confirmation link after signup.
func (s *EmailService) SendVerification(to, name, token string) error {
	verifyURL := fmt.Sprintf("%s/auth/verify?token=%s", s.frontendURL, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1>🎬 Slateboard</h1>
        <p>Hi %s,</p>
        <p>Confirm your email address to finish setting up your account:</p>
        <a href="%s" style="display: inline-block; background: #e94560; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px;">Verify email</a>
    </div>
</body>
</html>
	`, name, verifyURL)

	return s.send(to, "Verify your Slateboard email", htmlBody)
}
