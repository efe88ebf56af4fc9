package kinds

import (
	"fmt"
	"net/mail"

	"github.com/kjk/records/recordstore"
)

type Email struct {
	Address string
	Subject string
	Content string
	Read    bool
}

func checkAddress(v any) error {
	if _, err := mail.ParseAddress(v.(string)); err != nil {
		return fmt.Errorf("invalid email address '%s'", v)
	}
	return nil
}

var EmailKind = &recordstore.Kind[Email]{
	Name: "email",
	Fields: []recordstore.Field[Email]{
		{
			Name:     "address",
			Type:     recordstore.String,
			Required: true,
			Get:      func(e *Email) any { return e.Address },
			Set:      func(e *Email, v any) { e.Address = v.(string) },
			Check:    checkAddress,
		},
		{
			Name:     "subject",
			Type:     recordstore.String,
			Required: true,
			Get:      func(e *Email) any { return e.Subject },
			Set:      func(e *Email, v any) { e.Subject = v.(string) },
		},
		{
			Name: "content",
			Type: recordstore.String,
			Get:  func(e *Email) any { return e.Content },
			Set:  func(e *Email, v any) { e.Content = v.(string) },
		},
		{
			Name: "read",
			Type: recordstore.Bool,
			Get:  func(e *Email) any { return e.Read },
			Set:  func(e *Email, v any) { e.Read = v.(bool) },
		},
	},
}

func NewEmailStore(opts ...recordstore.Option) *recordstore.Store[Email] {
	return recordstore.New(EmailKind, opts...)
}

// MarkRead marks the email at index as read and returns it
func MarkRead(s *recordstore.Store[Email], index int) (recordstore.Record[Email], error) {
	return s.UpdateAt(index, recordstore.Fields{"read": true})
}

func Unread(s *recordstore.Store[Email]) []recordstore.Record[Email] {
	return s.Filter(func(r *recordstore.Record[Email]) bool {
		return !r.Value.Read
	})
}

type InboxStats struct {
	Total  int
	Read   int
	Unread int
}

func Stats(s *recordstore.Store[Email]) InboxStats {
	res := InboxStats{
		Total:  s.Len(),
		Unread: len(Unread(s)),
	}
	res.Read = res.Total - res.Unread
	return res
}

func SeedEmails(s *recordstore.Store[Email]) error {
	emails := []recordstore.Fields{
		{"address": "noreply@cogrammar.com", "subject": "Welcome to Hyperion Dev", "content": "Thank you for joining us"},
		{"address": "noreply@cogrammar.com", "subject": "Great work on the bootcamp!", "content": "Keep up the fantastic progress"},
		{"address": "noreply@cogrammar.com", "subject": "Your excellent marks!", "content": "You scored excellently on your last project!"},
	}
	return seed(s, emails)
}
