package service

import (
	"fmt"
	"time"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/models"
	mail "github.com/go-mail/mail/v2"
)

// Notifier sends due-date reminder mail to borrowers.
type Notifier struct {
	Host string
	Port int
	User string
	Pass string
	From string
	Log  *logger.Logger
}

func (n *Notifier) Configured() bool {
	return n != nil && n.Host != "" && n.From != ""
}

// SendDueReminder mails one borrower about one open issue.
func (n *Notifier) SendDueReminder(issue models.IssueWithDetails) error {
	if !n.Configured() {
		return fmt.Errorf("smtp is not configured")
	}
	if issue.BorrowerEmail == "" {
		return fmt.Errorf("issue %s has no borrower email", issue.ID.Hex())
	}
	name := issue.BorrowerName
	if name == "" {
		name = "library member"
	}
	verb := "is due"
	if issue.Status == models.IssueStatusOverdue || issue.DueDate.Before(time.Now()) {
		verb = "was due"
	}

	m := mail.NewMessage()
	m.SetHeader("From", n.From)
	m.SetHeader("To", issue.BorrowerEmail)
	m.SetHeader("Subject", fmt.Sprintf("Reminder: %q %s %s", issue.BookTitle, verb, issue.DueDate.Format("Jan 2, 2006")))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\n%q by %s %s on %s. Please return it to the library or contact the front desk to renew.\n\nUniversity Library",
		name, issue.BookTitle, issue.BookAuthor, verb, issue.DueDate.Format("Monday, Jan 2, 2006"),
	))

	d := mail.NewDialer(n.Host, n.Port, n.User, n.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	if err := d.DialAndSend(m); err != nil {
		return err
	}
	if n.Log != nil {
		n.Log.Info("due reminder sent", "to", issue.BorrowerEmail, "book", issue.BookTitle)
	}
	return nil
}
