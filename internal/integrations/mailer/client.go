package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"travel-social-functions/internal/integrations/paramstore"
)

const senderName = "Travel Social App"

// Client sends HTML mail over an SMTP relay. Credentials are fetched from
// Parameter Store on first use; the SMTP client is reused for the process
// lifetime.
type Client struct {
	host          string
	port          int
	from          string
	getter        paramstore.Getter
	userParam     string
	passwordParam string

	initOnce sync.Once
	smtp     *mail.Client
	initErr  error
}

func NewClient(getter paramstore.Getter, host string, port int, from, userParam, passwordParam string) (*Client, error) {
	if getter == nil {
		return nil, errors.New("mailer: paramstore getter must not be nil")
	}
	if strings.TrimSpace(host) == "" {
		return nil, errors.New("mailer: host must not be empty")
	}
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("mailer: from address must not be empty")
	}
	if strings.TrimSpace(userParam) == "" || strings.TrimSpace(passwordParam) == "" {
		return nil, errors.New("mailer: credential parameter names must not be empty")
	}
	if port <= 0 {
		port = 587
	}
	return &Client{
		host:          host,
		port:          port,
		from:          from,
		getter:        getter,
		userParam:     userParam,
		passwordParam: passwordParam,
	}, nil
}

func (c *Client) resolveSMTP(ctx context.Context) (*mail.Client, error) {
	c.initOnce.Do(func() {
		user, err := c.getter.GetParameter(ctx, c.userParam)
		if err != nil {
			c.initErr = fmt.Errorf("mailer: fetch SMTP user: %w", err)
			return
		}
		password, err := c.getter.GetParameter(ctx, c.passwordParam)
		if err != nil {
			c.initErr = fmt.Errorf("mailer: fetch SMTP password: %w", err)
			return
		}
		c.smtp, c.initErr = mail.NewClient(c.host,
			mail.WithPort(c.port),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(password),
		)
	})
	return c.smtp, c.initErr
}

// Send delivers one HTML email and returns the message id it was sent under.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errors.New("mailer: recipient must not be empty")
	}

	smtp, err := c.resolveSMTP(ctx)
	if err != nil {
		return "", err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(senderName, c.from); err != nil {
		return "", fmt.Errorf("mailer: set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return "", fmt.Errorf("mailer: set recipient: %w", err)
	}
	msg.Subject(subject)
	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), c.host)
	msg.SetMessageIDWithValue(messageID)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := smtp.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("mailer: send: %w", err)
	}
	return messageID, nil
}
