package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRawHeaders(t *testing.T) {
	m := To("buyer@example.com").
		Subject("DELIVERED: Your Lumenera Cards").
		Body("<p>Esteemed Seeker,</p>")

	raw := string(m.buildRaw("Lumenera <noreply@lumenera.shop>"))

	assert.Contains(t, raw, "From: Lumenera <noreply@lumenera.shop>\r\n")
	assert.Contains(t, raw, "To: buyer@example.com\r\n")
	assert.Contains(t, raw, "Subject: DELIVERED: Your Lumenera Cards\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
	assert.Contains(t, raw, "\r\n\r\n<p>Esteemed Seeker,</p>")
}

func TestBuildRawMultipleRecipients(t *testing.T) {
	raw := string(To("a@example.com", "b@example.com").Subject("x").Body("y").
		buildRaw("Lumenera <noreply@lumenera.shop>"))
	assert.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
}

func TestSendRequiresCredentials(t *testing.T) {
	m := To("buyer@example.com").Subject("x").Body("y")
	m.smtpCfg = SMTP{Host: "smtp.example.com", Port: "587"}
	err := m.Send()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_USERNAME")
}
