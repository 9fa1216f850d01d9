// Package store appends reservation documents to the cloud document store.
package store

import (
	"context"
	"fmt"
	"strings"

	"privatechef/internal/models"
	"privatechef/internal/outcome"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// FirestoreStore appends reservations under the app's public data namespace.
// Documents are never read back or updated.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	logger     *zerolog.Logger
}

// NewFirestoreClient opens a client for projectID. An empty credentialsFile
// falls back to application default credentials (or the emulator when
// FIRESTORE_EMULATOR_HOST is set).
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return client, nil
}

// CollectionPath returns the reservations collection path for appID.
func CollectionPath(appID, collection string) string {
	return strings.Join([]string{"artifacts", appID, "public", "data", collection}, "/")
}

func NewFirestoreStore(client *firestore.Client, appID, collection string, logger *zerolog.Logger) *FirestoreStore {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FirestoreStore{
		client:     client,
		collection: CollectionPath(appID, collection),
		logger:     logger,
	}
}

// AppendReservation adds one document and returns its id. The creation
// timestamp is assigned by the server.
func (s *FirestoreStore) AppendReservation(ctx context.Context, record *models.ReservationRecord) (string, error) {
	if s == nil || s.client == nil {
		return "", outcome.NewNotReady("document store is not initialized")
	}

	ref, _, err := s.client.Collection(s.collection).Add(ctx, reservationDocument(record))
	if err != nil {
		s.logger.Error().Err(err).Str("collection", s.collection).Msg("append reservation failed")
		return "", outcome.NewTransport("Failed to submit reservation. Please try again.", err)
	}

	s.logger.Info().Str("reservation_id", ref.ID).Str("user_id", record.UserID).Msg("reservation appended")
	return ref.ID, nil
}

func reservationDocument(record *models.ReservationRecord) map[string]interface{} {
	r := record.ReservationRequest
	return map[string]interface{}{
		"name":            r.Name,
		"email":           r.Email,
		"phone":           r.Phone,
		"date":            r.Date,
		"time":            r.Time,
		"guests":          r.Guests,
		"eventType":       string(r.EventType),
		"dietaryNotes":    r.DietaryNotes,
		"specialRequests": r.SpecialRequests,
		"userId":          record.UserID,
		"createdAt":       firestore.ServerTimestamp,
	}
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
