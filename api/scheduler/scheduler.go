package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/models"
	templates "github.com/linesmerrill/rider-safety-api/templates/html"
)

const (
	digestLock    = "moderation_digest"
	digestLockTTL = 10 * time.Minute
)

// Mailer sends one email. *sendgrid.Client satisfies it.
type Mailer interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Scheduler runs the moderation digest job
type Scheduler struct {
	cron       *cron.Cron
	FlagDB     databases.ContentFlagDatabase
	ImageDB    databases.ImageDatabase
	LockDB     databases.SchedulerLockDatabase
	Mailer     Mailer
	From       string
	Recipients []string
	ReviewURL  string
	Schedule   string
	instanceID string
}

// NewScheduler creates a new scheduler instance. Without a SendGrid key the
// digest is computed and logged but never mailed.
func NewScheduler(conf *config.Config, flagDB databases.ContentFlagDatabase, imageDB databases.ImageDatabase, lockDB databases.SchedulerLockDatabase) *Scheduler {
	// Heroku sets DYNO to "web.1", "web.2", etc.
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = "instance-" + uuid.NewString()
	}

	var mailer Mailer
	if conf.SendGridAPIKey != "" {
		mailer = sendgrid.NewSendClient(conf.SendGridAPIKey)
	}

	reviewURL := ""
	if conf.BaseURL != "" {
		reviewURL = conf.BaseURL + "/admin/moderation"
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		FlagDB:     flagDB,
		ImageDB:    imageDB,
		LockDB:     lockDB,
		Mailer:     mailer,
		From:       conf.DigestFromEmail,
		Recipients: conf.DigestEmails,
		ReviewURL:  reviewURL,
		Schedule:   conf.DigestSchedule,
		instanceID: instanceID,
	}
}

// Start registers the digest job and starts the cron runner
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.Schedule, s.runDigestJob)
	if err != nil {
		return fmt.Errorf("register moderation digest job: %w", err)
	}
	s.cron.Start()
	zap.S().Infow("Moderation scheduler started", "schedule", s.Schedule, "instance", s.instanceID)
	return nil
}

// Stop waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Moderation scheduler stopped")
}

func (s *Scheduler) runDigestJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent, err := s.RunDigest(ctx)
	if err != nil {
		zap.S().Errorw("moderation digest failed", "error", err)
		return
	}
	zap.S().Infow("moderation digest finished", "sent", sent)
}

// RunDigest counts what is waiting for review and mails the moderators when
// anything is. It takes the digest lock first so only one instance sends.
// Returns the number of emails sent.
func (s *Scheduler) RunDigest(ctx context.Context) (sent int, err error) {
	acquired, err := s.LockDB.TryAcquireLock(ctx, digestLock, s.instanceID, digestLockTTL)
	if err != nil {
		return 0, fmt.Errorf("acquire digest lock: %w", err)
	}
	if !acquired {
		zap.S().Debug("Moderation digest already handled by another instance, skipping")
		return 0, nil
	}
	// a finished run holds the lease until it expires, covering this slot on
	// every instance; only a failed run gives it back
	defer func() {
		if err == nil {
			return
		}
		if relErr := s.LockDB.ReleaseLock(ctx, digestLock, s.instanceID); relErr != nil {
			zap.S().Warnw("failed to release digest lock", "error", relErr)
		}
	}()

	flags, err := s.FlagDB.CountDocuments(ctx, bson.M{"status": models.FlagPending})
	if err != nil {
		return 0, fmt.Errorf("count pending flags: %w", err)
	}
	images, err := s.ImageDB.CountDocuments(ctx, bson.M{"moderationStatus": models.ImagePending})
	if err != nil {
		return 0, fmt.Errorf("count pending images: %w", err)
	}

	if flags == 0 && images == 0 {
		return 0, nil
	}
	data := templates.DigestData{PendingFlags: flags, PendingImages: images, ReviewURL: s.ReviewURL}
	if s.Mailer == nil || len(s.Recipients) == 0 {
		zap.S().Infow("moderation digest not mailed, no mailer or recipients",
			"pendingFlags", flags, "pendingImages", images)
		return 0, nil
	}

	subject := templates.DigestSubject(data)
	htmlContent := templates.RenderModerationDigest(data)
	plainText := templates.RenderDigestText(data)

	for _, to := range s.Recipients {
		if err := s.sendEmail(to, subject, htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send moderation digest", "to", to, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Scheduler) sendEmail(toEmail, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("Rider Safety", s.From)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	response, err := s.Mailer.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
