package mail

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"
)

// render writes the message's wire form into a buffer so the tests can
// inspect what DialAndSend would put on the socket.
func render(m *gomail.Message) (string, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func TestBuildMessage(t *testing.T) {
	msg := Message{
		To:      "user@example.com",
		Subject: "Energy Alert Set for India",
		Body:    "Hi!\n\nYou've set an energy alert.\n",
		Attachments: []Attachment{{
			Filename:    "dashboard.png",
			ContentType: "image/png",
			Data:        []byte{0x89, 'P', 'N', 'G'},
		}},
	}

	wire, err := render(buildMessage("alerts@example.com", msg))
	require.NoError(t, err)

	assert.Contains(t, wire, "From: alerts@example.com")
	assert.Contains(t, wire, "To: user@example.com")
	assert.Contains(t, wire, "Subject: Energy Alert Set for India")
	assert.Contains(t, wire, "dashboard.png")
	assert.Contains(t, wire, "image/png")
}

func TestBuildMessageNoAttachments(t *testing.T) {
	wire, err := render(buildMessage("alerts@example.com", Message{
		To:      "user@example.com",
		Subject: "hello",
		Body:    "plain body",
	}))
	require.NoError(t, err)

	assert.Contains(t, wire, "plain body")
	assert.NotContains(t, wire, "Content-Disposition: attachment")
}
