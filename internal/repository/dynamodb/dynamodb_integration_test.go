package dynamodb

import (
	"context"
	"os"
	"testing"
	"time"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dynamoTestEndpoint = "http://localhost:8000"

type testRepos struct {
	jobs         *jobRepository
	applications *applicationRepository
	tickets      *ticketRepository
	settlement   *settlementRepository
	profiles     *profileRepository
}

func setupRepos(t *testing.T) testRepos {
	if testing.Short() {
		t.Skip("skipping dynamodb integration test in short mode")
	}

	endpoint := os.Getenv("KARMAHUB_TEST_DYNAMODB_ENDPOINT")
	if endpoint == "" {
		endpoint = dynamoTestEndpoint
	}

	log, err := logger.NewZapLoggerForDev()
	require.NoError(t, err, "failed to create logger")

	client := dynamodb.New(dynamodb.Options{
		Region:       "eu-central-1",
		BaseEndpoint: aws.String(endpoint),
		Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "local", SecretAccessKey: "local"}, nil
		}),
	})

	// fresh tables per test so runs never see each other's items
	prefix := "it_" + uuid.New().String()[:8] + "_"
	defaults := DefaultTables()
	tables := Tables{
		Jobs:            prefix + defaults.Jobs,
		Applications:    prefix + defaults.Applications,
		ApplicationKeys: prefix + defaults.ApplicationKeys,
		Tickets:         prefix + defaults.Tickets,
		Ratings:         prefix + defaults.Ratings,
		Profiles:        prefix + defaults.Profiles,
		ActivityLog:     prefix + defaults.ActivityLog,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, EnsureTables(ctx, client, tables, log), "failed to create tables on %s", endpoint)

	t.Cleanup(func() {
		for _, spec := range tables.specs() {
			client.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{TableName: aws.String(spec.name)})
		}
	})

	return testRepos{
		jobs:         NewJobRepository(client, tables.Jobs, log).(*jobRepository),
		applications: NewApplicationRepository(client, tables.Applications, tables.ApplicationKeys, log).(*applicationRepository),
		tickets:      NewTicketRepository(client, tables.Tickets, log).(*ticketRepository),
		settlement:   NewSettlementRepository(client, tables.Tickets, tables.Profiles, log).(*settlementRepository),
		profiles:     NewProfileRepository(client, tables.Profiles, log).(*profileRepository),
	}
}

func openJob(t *testing.T, repos testRepos, creatorID string, jobType domain.JobType) *domain.Job {
	t.Helper()

	in := domain.NewJobInput{
		Title:    "Gartenarbeit",
		Category: "garden",
		JobType:  jobType,
		Location: "Hamburg",
	}
	if jobType == domain.JobTypePaid {
		budget := 30.0
		in.Budget = &budget
	}

	job := domain.NewJob(creatorID, in, domain.DefaultKarmaReward)
	require.NoError(t, repos.jobs.Create(context.Background(), job))
	return job
}

func TestApplicationUniqueness(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	job := openJob(t, repos, "creator", domain.JobTypeGoodDeeds)

	first := domain.NewJobApplication(job.JobID, "helper", "gern")
	require.NoError(t, repos.applications.Create(ctx, first))

	second := domain.NewJobApplication(job.JobID, "helper", "nochmal")
	err := repos.applications.Create(ctx, second)
	assert.True(t, repository.IsAlreadyExistsError(err), "got %v", err)

	_, err = repos.applications.GetByID(ctx, second.ApplicationID)
	assert.True(t, repository.IsNotFoundError(err), "the cancelled transaction must not leave the application behind")

	other := domain.NewJobApplication(job.JobID, "someone-else", "")
	require.NoError(t, repos.applications.Create(ctx, other))

	applications, err := repos.applications.ListByJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Len(t, applications, 2)
}

func TestJobTransitions(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	t.Run("assign only once and only by the creator", func(t *testing.T) {
		job := openJob(t, repos, "creator", domain.JobTypePaid)

		err := repos.jobs.Assign(ctx, job.JobID, "intruder", "helper", "app-1", now)
		assert.True(t, repository.IsConditionFailedError(err), "got %v", err)

		require.NoError(t, repos.jobs.Assign(ctx, job.JobID, "creator", "helper", "app-1", now))

		err = repos.jobs.Assign(ctx, job.JobID, "creator", "other", "app-2", now)
		assert.True(t, repository.IsConditionFailedError(err), "got %v", err)

		stored, err := repos.jobs.GetByID(ctx, job.JobID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusInProgress, stored.Status)
		assert.Equal(t, "helper", stored.AssignedTo)
		assert.Equal(t, "app-1", stored.PendingAcceptanceID)

		pending, err := repos.jobs.ListPendingAcceptances(ctx, now)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, job.JobID, pending[0].JobID)

		err = repos.jobs.ClearAcceptanceMarker(ctx, job.JobID, "app-2", now)
		assert.True(t, repository.IsConditionFailedError(err), "only the marked application may clear the marker")

		require.NoError(t, repos.jobs.ClearAcceptanceMarker(ctx, job.JobID, "app-1", now))
		require.NoError(t, repos.jobs.ClearAcceptanceMarker(ctx, job.JobID, "app-1", now), "clearing is idempotent")

		pending, err = repos.jobs.ListPendingAcceptances(ctx, now)
		require.NoError(t, err)
		assert.Empty(t, pending)

		err = repos.jobs.Complete(ctx, job.JobID, "other", now)
		assert.True(t, repository.IsConditionFailedError(err), "got %v", err)
		require.NoError(t, repos.jobs.Complete(ctx, job.JobID, "helper", now))

		err = repos.jobs.Cancel(ctx, job.JobID, "creator", now)
		assert.True(t, repository.IsConditionFailedError(err), "completed jobs cannot be cancelled")
	})

	t.Run("cancel from open by the creator", func(t *testing.T) {
		job := openJob(t, repos, "creator", domain.JobTypeGoodDeeds)

		err := repos.jobs.Cancel(ctx, job.JobID, "intruder", now)
		assert.True(t, repository.IsConditionFailedError(err), "got %v", err)
		require.NoError(t, repos.jobs.Cancel(ctx, job.JobID, "creator", now))

		err = repos.jobs.Assign(ctx, job.JobID, "creator", "helper", "app-1", now)
		assert.True(t, repository.IsConditionFailedError(err), "cancelled jobs cannot be assigned")
	})
}

func TestApplicationStatusPredicates(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()
	job := openJob(t, repos, "creator", domain.JobTypeGoodDeeds)

	chosen := domain.NewJobApplication(job.JobID, "helper", "")
	sibling := domain.NewJobApplication(job.JobID, "other", "")
	require.NoError(t, repos.applications.Create(ctx, chosen))
	require.NoError(t, repos.applications.Create(ctx, sibling))

	err := repos.applications.Accept(ctx, chosen.ApplicationID, "another-job", now)
	assert.True(t, repository.IsConditionFailedError(err), "application must belong to the job")

	require.NoError(t, repos.applications.Accept(ctx, chosen.ApplicationID, job.JobID, now))
	require.NoError(t, repos.applications.Accept(ctx, chosen.ApplicationID, job.JobID, now), "accept is idempotent")

	err = repos.applications.Reject(ctx, chosen.ApplicationID, job.JobID, now)
	assert.True(t, repository.IsConditionFailedError(err), "an accepted application is never rejected")

	require.NoError(t, repos.applications.Reject(ctx, sibling.ApplicationID, job.JobID, now))
	err = repos.applications.Accept(ctx, sibling.ApplicationID, job.JobID, now)
	assert.True(t, repository.IsConditionFailedError(err), "a rejected application is never accepted")

	stored, err := repos.applications.GetByID(ctx, chosen.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusAccepted, stored.Status)
}

func TestSettlementIsIdempotent(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()
	job := openJob(t, repos, "creator", domain.JobTypePaid)

	ticket := domain.NewJobTicket(job.JobID, "app-1", "helper")
	require.NoError(t, repos.tickets.Create(ctx, ticket))

	err := repos.tickets.Create(ctx, domain.NewJobTicket(job.JobID, "app-1", "helper"))
	assert.True(t, repository.IsAlreadyExistsError(err), "one ticket per application")

	err = repos.settlement.AwardKarma(ctx, ticket.TicketID, "helper", 10, false, now)
	assert.True(t, repository.IsConditionFailedError(err), "active tickets are not settled")

	require.NoError(t, repos.tickets.Complete(ctx, ticket.TicketID, now))
	err = repos.tickets.Complete(ctx, ticket.TicketID, now)
	assert.True(t, repository.IsConditionFailedError(err), "got %v", err)

	require.NoError(t, repos.settlement.AwardKarma(ctx, ticket.TicketID, "helper", 10, false, now))
	err = repos.settlement.AwardKarma(ctx, ticket.TicketID, "helper", 10, false, now)
	assert.True(t, repository.IsConditionFailedError(err), "got %v", err)

	require.NoError(t, repos.settlement.ReleasePayment(ctx, ticket.TicketID, "helper", 30, now))
	err = repos.settlement.ReleasePayment(ctx, ticket.TicketID, "helper", 30, now)
	assert.True(t, repository.IsConditionFailedError(err), "got %v", err)

	stored, err := repos.tickets.GetByID(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.True(t, stored.KarmaAwarded)
	assert.True(t, stored.PaymentReleased)

	profile, err := repos.profiles.Get(ctx, "helper")
	require.NoError(t, err)
	assert.Equal(t, 10, profile.KarmaPoints, "karma is credited once")
	assert.Equal(t, 30.0, profile.TotalEarned, "payment is credited once")
	assert.Zero(t, profile.GoodDeedsCompleted)
}
