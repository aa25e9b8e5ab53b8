package model

// Markup is an optional inline keyboard attached to an outbound message.
// Buttons carry either a plain URL or a mini-app URL, never both.
type Markup struct {
	Rows [][]MarkupButton
}

type MarkupButton struct {
	Text      string
	URL       string
	WebAppURL string
}
