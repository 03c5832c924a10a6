package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/config"
	"github.com/enosefelix/job-finder-sub000/internal/events"
	"github.com/enosefelix/job-finder-sub000/internal/mailqueue"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
)

// Mail templates rendered by the mailer.
const (
	TemplateListingStatusChanged = "listing_status_changed"
	TemplateListingDeleted       = "listing_deleted"
	TemplateAccountSuspended     = "account_suspended"
)

// MailQueue accepts outbound mail jobs.
type MailQueue interface {
	Enqueue(ctx context.Context, job mailqueue.Job) error
}

// NotificationService turns domain events into queued emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      MailQueue
	users      repository.UserRepository
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. users resolves recipients
// whose address is not carried on the event.
func NewNotificationService(dispatcher events.Dispatcher, queue MailQueue, users repository.UserRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		users:      users,
		logger:     nopIfNil(logger),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventListingStatusChanged, n.handleListingStatusChanged)
	n.dispatcher.Subscribe(events.EventListingDeleted, n.handleListingDeleted)
	n.dispatcher.Subscribe(events.EventUserSuspended, n.handleUserSuspended)
}

func (n *NotificationService) handleListingStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ListingStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Debug("ListingStatusChanged", zap.String("listing_id", event.SubjectID))
	return n.send(ctx, mailqueue.Job{
		To:       payload.PosterEmail,
		Template: TemplateListingStatusChanged,
		Subject:  "Your job listing is now " + payload.NewStatus.Label(),
		Data: map[string]string{
			"listing_id": event.SubjectID,
			"title":      payload.Title,
			"old_status": payload.OldStatus.Label(),
			"new_status": payload.NewStatus.Label(),
		},
	})
}

func (n *NotificationService) handleListingDeleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ListingDeletedPayload)
	if !ok || payload.PosterID == event.ActorID {
		return nil
	}
	poster, err := n.lookupEmail(ctx, payload.PosterID)
	if err != nil || poster == "" {
		return err
	}
	n.logger.Debug("ListingDeleted", zap.String("listing_id", event.SubjectID))
	return n.send(ctx, mailqueue.Job{
		To:       poster,
		Template: TemplateListingDeleted,
		Subject:  "Your job listing was removed",
		Data: map[string]string{
			"listing_id":   event.SubjectID,
			"title":        payload.Title,
			"applications": strconv.FormatInt(payload.ApplicationsDeleted, 10),
		},
	})
}

func (n *NotificationService) handleUserSuspended(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserSuspendedPayload)
	if !ok {
		return nil
	}
	n.logger.Debug("UserSuspended", zap.String("user_id", event.SubjectID))
	return n.send(ctx, mailqueue.Job{
		To:       payload.Email,
		Template: TemplateAccountSuspended,
		Subject:  "Your account has been suspended",
		Data: map[string]string{
			"listings_downgraded": strconv.FormatInt(payload.ListingsDowngraded, 10),
		},
	})
}

func (n *NotificationService) lookupEmail(ctx context.Context, userID string) (string, error) {
	if n.users == nil {
		return "", nil
	}
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func (n *NotificationService) send(ctx context.Context, job mailqueue.Job) error {
	if n.queue == nil || strings.TrimSpace(n.cfg.EmailFrom) == "" || strings.TrimSpace(job.To) == "" {
		return nil
	}
	job.From = n.cfg.EmailFrom
	return n.queue.Enqueue(ctx, job)
}
