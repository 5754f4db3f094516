package types

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// TicketIDLength is the number of characters in a ticket code
const TicketIDLength = 4

// TicketIDAlphabet is the character set ticket codes are drawn from
const TicketIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TicketID is the short code a requester uses to track a ticket
type TicketID string

var ticketIDPattern = regexp.MustCompile(`^[0-9A-Z]{4}$`)

// NormalizeTicketID trims surrounding whitespace and upper-cases s. Lookups
// are case-sensitive, so user input goes through here first.
func NormalizeTicketID(s string) TicketID {
	return TicketID(strings.ToUpper(strings.TrimSpace(s)))
}

// Validate checks that id is exactly four characters of [0-9A-Z]
func (id TicketID) Validate() error {
	if !ticketIDPattern.MatchString(string(id)) {
		return goerr.New("ticket ID must be 4 uppercase alphanumeric characters", goerr.V("id", id))
	}
	return nil
}

func (id TicketID) String() string {
	return string(id)
}
