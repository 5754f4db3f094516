package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
)

// client posts staff alerts to a single channel
type client struct {
	api       *slack.Client
	channelID string
	baseURL   string
	apiOpts   []slack.Option
}

var _ interfaces.StaffAlerter = &client{}

// Option is a functional option for client configuration
type Option func(*client)

// WithBaseURL adds a link to the staff console into each alert
func WithBaseURL(url string) Option {
	return func(c *client) {
		c.baseURL = url
	}
}

// WithAPIURL points the client at a different Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiOpts = append(c.apiOpts, slack.OptionAPIURL(url))
	}
}

// New creates a staff alerter posting to channelID with the given bot token
func New(token, channelID string, opts ...Option) (interfaces.StaffAlerter, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	c := &client{channelID: channelID}
	for _, opt := range opts {
		opt(c)
	}
	c.api = slack.New(token, c.apiOpts...)

	return c, nil
}

// TicketCreated posts a summary of t. The requester's e-mail address and
// the issue text are left out of the channel.
func (c *client) TicketCreated(ctx context.Context, t *model.Ticket) error {
	text := fmt.Sprintf("New help desk ticket *%s* (%s)", t.ID, t.Category)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Ticket*\n"+string(t.ID), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Category*\n"+string(t.Category), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Role*\n"+string(t.Role), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Status*\n"+t.Status.Label(), false, false),
	}
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), fields, nil),
	}
	if c.baseURL != "" {
		link := fmt.Sprintf("<%s|Open staff console>", c.baseURL)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, link, false, false)))
	}

	_, _, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post ticket alert",
			goerr.V(model.TicketIDKey, t.ID), goerr.V("channel", c.channelID))
	}
	return nil
}
