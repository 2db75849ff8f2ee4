package mailer

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/entity"
	tpl "github.com/oksasatya/go-ddd-user-accounts/pkg/mailer/templates"
)

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier turns account events into EmailJobs on the mail queue.
type Notifier struct {
	Pub   JSONPublisher
	Brand tpl.Brand
	Now   func() time.Time
}

func NewNotifier(pub JSONPublisher, brand tpl.Brand) *Notifier {
	return &Notifier{Pub: pub, Brand: brand, Now: time.Now}
}

func (n *Notifier) Welcome(ctx context.Context, u entity.Projection) error {
	data := tpl.NewWelcomeData(n.Brand, u.Name, u.Email, tpl.WithTime(n.Now()))
	return n.Pub.PublishJSON(ctx, EmailJob{To: u.Email, Template: tpl.Welcome, Data: tpl.ToMap(data)})
}

func (n *Notifier) ProfileUpdated(ctx context.Context, u entity.Projection, changed []string) error {
	data := tpl.NewProfileUpdatedData(n.Brand, u.Name, u.Email, tpl.WithTime(n.Now()), tpl.WithChanges(changed))
	return n.Pub.PublishJSON(ctx, EmailJob{To: u.Email, Template: tpl.ProfileUpdated, Data: tpl.ToMap(data)})
}
