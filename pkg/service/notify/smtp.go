package notify

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/wneessen/go-mail"
)

// DefaultSMTPPort is the submission port used with STARTTLS
const DefaultSMTPPort = 587

// SMTP sends plain-text mail through an authenticated relay
type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
	tls      mail.TLSPolicy
}

var _ interfaces.Notifier = &SMTP{}

type Option func(*SMTP)

func WithPort(port int) Option {
	return func(s *SMTP) {
		s.port = port
	}
}

// WithAuth enables PLAIN authentication
func WithAuth(username, password string) Option {
	return func(s *SMTP) {
		s.username = username
		s.password = password
	}
}

// WithFrom sets the sender; defaults to the auth username
func WithFrom(from string) Option {
	return func(s *SMTP) {
		s.from = from
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *SMTP) {
		s.timeout = d
	}
}

// WithOpportunisticTLS allows relays without STARTTLS, for local test servers
func WithOpportunisticTLS() Option {
	return func(s *SMTP) {
		s.tls = mail.TLSOpportunistic
	}
}

func NewSMTP(host string, opts ...Option) (*SMTP, error) {
	if host == "" {
		return nil, goerr.New("SMTP host is required")
	}

	s := &SMTP{
		host:    host,
		port:    DefaultSMTPPort,
		timeout: 15 * time.Second,
		tls:     mail.TLSMandatory,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.from == "" {
		s.from = s.username
	}
	if s.from == "" {
		return nil, goerr.New("SMTP sender address is required")
	}
	return s, nil
}

// Notify sends one message and waits for the relay to accept it
func (s *SMTP) Notify(ctx context.Context, address, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return goerr.Wrap(err, "invalid sender address", goerr.V("from", s.from))
	}
	if err := msg.To(address); err != nil {
		return goerr.Wrap(err, "invalid recipient address")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(s.tls),
		mail.WithTimeout(s.timeout),
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return goerr.Wrap(err, "failed to create SMTP client", goerr.V("host", s.host))
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to send mail", goerr.V("host", s.host), goerr.V("port", s.port))
	}
	return nil
}
