package mail

import (
	"context"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/storage"
)

// Sanitizing strips markup from every field before handing the form on.
type Sanitizing struct {
	Next   contact.Submitter
	policy *bluemonday.Policy
}

func NewSanitizing(next contact.Submitter) *Sanitizing {
	return &Sanitizing{Next: next, policy: bluemonday.StrictPolicy()}
}

// Submit cleans f and passes it on. A form that only validated because of
// its markup is rejected with the *contact.ValidationError of the cleaned
// form and never reaches Next.
func (s *Sanitizing) Submit(ctx context.Context, f contact.Form) error {
	f = s.Clean(f)
	if err := contact.Validate(f); err != nil {
		return err
	}
	return s.Next.Submit(ctx, f)
}

// Clean returns f with HTML removed. Entities produced by the policy are
// decoded again so plain text survives unchanged.
func (s *Sanitizing) Clean(f contact.Form) contact.Form {
	clean := func(v string) string {
		return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
	}
	return contact.Form{
		Name:    clean(f.Name),
		Email:   clean(f.Email),
		Subject: clean(f.Subject),
		Message: clean(f.Message),
	}
}

// MessageStore is the subset of storage used to record submissions.
type MessageStore interface {
	SaveMessage(ctx context.Context, m storage.Message) error
}

// Recording stores every delivery attempt with its outcome. A failure to
// store is logged and never changes the delivery result.
type Recording struct {
	Next  contact.Submitter
	Store MessageStore
	log   *logrus.Entry
}

func NewRecording(next contact.Submitter, store MessageStore) *Recording {
	return &Recording{Next: next, Store: store, log: logging.Component("mail")}
}

func (r *Recording) Submit(ctx context.Context, f contact.Form) error {
	err := r.Next.Submit(ctx, f)

	m := storage.Message{
		ID:      uuid.NewString(),
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Message: f.Message,
		Status:  contact.Success.String(),
	}
	if err != nil {
		m.Status = contact.Error.String()
		m.Error = err.Error()
	}
	if serr := r.Store.SaveMessage(context.WithoutCancel(ctx), m); serr != nil {
		r.log.WithError(serr).WithField("id", m.ID).Error("failed to record contact message")
	}
	return err
}
