package notifications

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 7, 14, 8, 0, 0, 0, time.UTC)
}

func newTestEvent(kind Kind, authorID uuid.UUID) Event {
	return Event{
		ID:   uuid.New(),
		Kind: kind,
		Content: ContentSnapshot{
			ID:              uuid.New(),
			Title:           "Jadwal Ujian Semester",
			Type:            "announcement",
			AuthorID:        authorID,
			RejectionReason: "Please add the exam rooms",
		},
		ActorID:    uuid.New(),
		OccurredAt: fixedClock(),
	}
}

func TestDispatcherSendsSubmissionToEveryAdministrator(t *testing.T) {
	sender := NewMemorySender()
	directory := NewStaticDirectory([]Recipient{
		{Name: "Ibu Sari", Address: "sari@school.example"},
		{Name: "Pak Budi", Address: "budi@school.example"},
		{Name: "Duplicate", Address: "budi@school.example"},
	}, nil)
	dispatcher := NewDispatcher(sender, directory, WithClock(fixedClock), WithSiteName("SMK"))

	event := newTestEvent(KindSubmittedForApproval, uuid.New())
	dispatcher.Dispatch(context.Background(), event)
	dispatcher.Wait()

	deliveries := sender.Deliveries()
	require.Len(t, deliveries, 2)
	assert.Equal(t, "sari@school.example", deliveries[0].Recipient.Address)
	assert.Equal(t, "[SMK] Review requested: Jadwal Ujian Semester", deliveries[0].Subject)
	assert.Contains(t, deliveries[0].Body, "Hello Ibu Sari")
	assert.Equal(t, fixedClock(), deliveries[0].SentAt)
	assert.Equal(t, event.ID, deliveries[1].EventID)
	assert.NotEqual(t, deliveries[0].ID, deliveries[1].ID)
}

func TestDispatcherSendsDecisionToAuthor(t *testing.T) {
	authorID := uuid.New()
	sender := NewMemorySender()
	directory := NewStaticDirectory(nil, map[uuid.UUID]Recipient{
		authorID: {Name: "Rina", Address: "rina@school.example"},
	})
	dispatcher := NewDispatcher(sender, directory)

	dispatcher.Dispatch(context.Background(), newTestEvent(KindRejected, authorID))
	dispatcher.Wait()

	deliveries := sender.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, authorID, deliveries[0].Recipient.ID)
	assert.Contains(t, deliveries[0].Body, "Reason: Please add the exam rooms")
	assert.Equal(t, KindRejected, deliveries[0].Kind)
}

func TestDispatcherAbsorbsSenderFailures(t *testing.T) {
	authorID := uuid.New()
	sender := NewMemorySender()
	sender.Fail(errors.New("smtp: connection refused"))
	directory := NewStaticDirectory(nil, map[uuid.UUID]Recipient{authorID: {Address: "rina@school.example"}})
	dispatcher := NewDispatcher(sender, directory)

	assert.NotPanics(t, func() {
		dispatcher.Dispatch(context.Background(), newTestEvent(KindApproved, authorID))
		dispatcher.Wait()
	})

	history := dispatcher.History()
	require.Len(t, history, 1)
	assert.Equal(t, StatusFailed, history[0].Status)
	assert.Contains(t, history[0].Error, "connection refused")
	assert.Empty(t, sender.Deliveries())
}

func TestDispatcherSkipsUnknownAuthor(t *testing.T) {
	sender := NewMemorySender()
	dispatcher := NewDispatcher(sender, NewStaticDirectory(nil, nil))

	dispatcher.Dispatch(context.Background(), newTestEvent(KindApproved, uuid.New()))
	dispatcher.Wait()

	assert.Empty(t, sender.Deliveries())
	assert.Empty(t, dispatcher.History())
}

func TestDispatcherIgnoresCallerCancellation(t *testing.T) {
	authorID := uuid.New()
	sender := NewMemorySender()
	directory := NewStaticDirectory(nil, map[uuid.UUID]Recipient{authorID: {Address: "rina@school.example"}})
	dispatcher := NewDispatcher(sender, directory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dispatcher.Dispatch(ctx, newTestEvent(KindApproved, authorID))
	dispatcher.Wait()

	assert.Len(t, sender.Deliveries(), 1)
}

func TestDispatcherRecoversFromPanickingSender(t *testing.T) {
	authorID := uuid.New()
	sender := SenderFunc(func(context.Context, Delivery) error { panic("boom") })
	directory := NewStaticDirectory(nil, map[uuid.UUID]Recipient{authorID: {Address: "rina@school.example"}})
	dispatcher := NewDispatcher(sender, directory)

	assert.NotPanics(t, func() {
		dispatcher.Dispatch(context.Background(), newTestEvent(KindApproved, authorID))
		dispatcher.Wait()
	})
}

func TestHistoryIsBounded(t *testing.T) {
	history := NewHistory(2)
	for i := 0; i < 3; i++ {
		history.Add(Record{Delivery: Delivery{Subject: string(rune('a' + i))}, Status: StatusSent})
	}
	recent := history.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Delivery.Subject)
	assert.Equal(t, "c", recent[1].Delivery.Subject)
}

func TestTemplateStoreRejectsUnknownKind(t *testing.T) {
	_, err := NewTemplateStore().Render(Kind("archived"), TemplateData{})
	assert.Error(t, err)
}

func TestSMTPSenderComposesPlainTextMail(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{})
	require.ErrorIs(t, err, ErrSMTPHostRequired)

	sender, err := NewSMTPSender(SMTPConfig{Host: "mail.school.example", From: "portal@school.example"})
	require.NoError(t, err)

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	sender.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	err = sender.Send(context.Background(), Delivery{
		ID:        uuid.New(),
		Recipient: Recipient{Address: "rina@school.example"},
		Subject:   "Published",
		Body:      "line one\nline two",
	})
	require.NoError(t, err)
	assert.Equal(t, "mail.school.example:587", gotAddr)
	assert.Equal(t, []string{"rina@school.example"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Published\r\n")
	assert.Contains(t, string(gotMsg), "line one\r\nline two")
}
