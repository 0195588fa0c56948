package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/rider-safety-api/api/scheduler"
	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/databases/mocks"
	"github.com/linesmerrill/rider-safety-api/models"
)

type fakeMailer struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (m *fakeMailer) Send(email *mail.SGMailV3) (*rest.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, email)
	status := m.status
	if status == 0 {
		status = 202
	}
	return &rest.Response{StatusCode: status}, nil
}

type digestFixture struct {
	flags  *mocks.ContentFlagDatabase
	images *mocks.ImageDatabase
	locks  *mocks.SchedulerLockDatabase
	mailer *fakeMailer
	s      *scheduler.Scheduler
}

func newDigestFixture() digestFixture {
	f := digestFixture{
		flags:  &mocks.ContentFlagDatabase{},
		images: &mocks.ImageDatabase{},
		locks:  &mocks.SchedulerLockDatabase{},
		mailer: &fakeMailer{},
	}
	f.s = scheduler.NewScheduler(&config.Config{
		BaseURL:         "https://admin.example",
		DigestFromEmail: "no-reply@example.com",
		DigestEmails:    []string{"mod1@example.com", "mod2@example.com"},
		DigestSchedule:  "0 13 * * *",
	}, f.flags, f.images, f.locks)
	f.s.Mailer = f.mailer
	f.locks.On("ReleaseLock", mock.Anything, "moderation_digest", mock.Anything).Return(nil).Maybe()
	return f
}

func (f digestFixture) counts(flags, images int64) {
	f.flags.On("CountDocuments", mock.Anything, bson.M{"status": models.FlagPending}).Return(flags, nil)
	f.images.On("CountDocuments", mock.Anything, bson.M{"moderationStatus": models.ImagePending}).Return(images, nil)
}

func TestRunDigestMailsEveryModerator(t *testing.T) {
	f := newDigestFixture()
	f.locks.On("TryAcquireLock", mock.Anything, "moderation_digest", mock.Anything, 10*time.Minute).Return(true, nil)
	f.counts(3, 1)

	sent, err := f.s.RunDigest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, "Moderation queue: 3 flagged messages, 1 images to review", f.mailer.sent[0].Subject)
	assert.Equal(t, "mod1@example.com", f.mailer.sent[0].Personalizations[0].To[0].Address)
	assert.Equal(t, "no-reply@example.com", f.mailer.sent[0].From.Address)
	f.locks.AssertNotCalled(t, "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDigestKeepsLeaseForLaterInstances(t *testing.T) {
	first := newDigestFixture()
	second := newDigestFixture()
	second.s.LockDB = first.locks

	// the lease taken by the first run is still held when the second fires
	first.locks.On("TryAcquireLock", mock.Anything, "moderation_digest", mock.Anything, 10*time.Minute).Return(true, nil).Once()
	first.locks.On("TryAcquireLock", mock.Anything, "moderation_digest", mock.Anything, 10*time.Minute).Return(false, nil).Once()
	first.counts(2, 0)

	sent, err := first.s.RunDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	sent, err = second.s.RunDigest(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	assert.Len(t, first.mailer.sent, 2)
	assert.Empty(t, second.mailer.sent)
	first.locks.AssertNotCalled(t, "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
	second.flags.AssertNotCalled(t, "CountDocuments", mock.Anything, mock.Anything)
}

func TestRunDigestNothingPending(t *testing.T) {
	f := newDigestFixture()
	f.locks.On("TryAcquireLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.counts(0, 0)

	sent, err := f.s.RunDigest(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.mailer.sent)
}

func TestRunDigestSkipsWhenLockHeld(t *testing.T) {
	f := newDigestFixture()
	f.locks.On("TryAcquireLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	sent, err := f.s.RunDigest(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
	f.flags.AssertNotCalled(t, "CountDocuments", mock.Anything, mock.Anything)
}

func TestRunDigestCountFailure(t *testing.T) {
	f := newDigestFixture()
	f.locks.On("TryAcquireLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.flags.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), errors.New("mocked-error"))

	_, err := f.s.RunDigest(context.Background())

	assert.EqualError(t, err, "count pending flags: mocked-error")
	f.locks.AssertCalled(t, "ReleaseLock", mock.Anything, "moderation_digest", mock.Anything)
}

func TestRunDigestCountsFailedSends(t *testing.T) {
	f := newDigestFixture()
	f.locks.On("TryAcquireLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.counts(1, 0)
	f.mailer.status = 401

	sent, err := f.s.RunDigest(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	f := newDigestFixture()
	f.s.Schedule = "not a cron line"

	assert.Error(t, f.s.Start())
}
