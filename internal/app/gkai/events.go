package gkai

import (
	"context"

	"github.com/magabrotheeeer/gkai/internal/lib/rabbitmq"
	services "github.com/magabrotheeeer/gkai/internal/services/auth"
)

// eventPublisher отправляет события аутентификации в exchange,
// используя тип события как routing key.
type eventPublisher struct {
	pub *rabbitmq.Publisher
}

func (p eventPublisher) Publish(ctx context.Context, event services.Event) error {
	return p.pub.Publish(ctx, event.Type, event)
}
