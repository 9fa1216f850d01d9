package store

import (
	"context"
	"os"
	"testing"

	"privatechef/internal/models"
	"privatechef/internal/outcome"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *models.ReservationRecord {
	return &models.ReservationRecord{
		ReservationRequest: models.ReservationRequest{
			Name:      "Ann",
			Email:     "ann@example.com",
			Phone:     "555-0100",
			Date:      "2026-12-24",
			Time:      "19:30",
			Guests:    6,
			EventType: models.EventPrivateDinner,
		},
		UserID: "uid-1",
	}
}

func TestCollectionPath(t *testing.T) {
	assert.Equal(t, "artifacts/chef-app/public/data/reservations", CollectionPath("chef-app", "reservations"))
}

func TestReservationDocument(t *testing.T) {
	doc := reservationDocument(sampleRecord())

	assert.Equal(t, "Ann", doc["name"])
	assert.Equal(t, 6, doc["guests"])
	assert.Equal(t, "private-dinner", doc["eventType"])
	assert.Equal(t, "uid-1", doc["userId"])
	assert.Equal(t, firestore.ServerTimestamp, doc["createdAt"])
	assert.Contains(t, doc, "dietaryNotes")
	assert.Contains(t, doc, "specialRequests")
}

func TestAppendReservationWithoutClient(t *testing.T) {
	s := NewFirestoreStore(nil, "app", "reservations", nil)
	_, err := s.AppendReservation(context.Background(), sampleRecord())
	assert.Equal(t, outcome.NotReady, outcome.KindOf(err))
}

func TestAppendReservationEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()

	client, err := NewFirestoreClient(ctx, "demo-privatechef", "")
	require.NoError(t, err)
	s := NewFirestoreStore(client, "test-app", "reservations", nil)
	defer s.Close()

	id, err := s.AppendReservation(ctx, sampleRecord())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap, err := client.Collection(CollectionPath("test-app", "reservations")).Doc(id).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", snap.Data()["name"])
	assert.Equal(t, int64(6), snap.Data()["guests"])
	assert.False(t, snap.CreateTime.IsZero())
}
