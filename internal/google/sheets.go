package google

import (
	"context"
	"fmt"
	"os"
	"time"

	"privatechef/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	reservationsSheet = "Reservations"
	reservationsRange = reservationsSheet + "!A:L"
)

var reservationHeaders = []interface{}{
	"Reservation ID", "Submitted At", "User ID", "Name", "Email", "Phone",
	"Date", "Time", "Guests", "Event Type", "Dietary Notes", "Special Requests",
}

// SheetsService mirrors reservations into the chef's spreadsheet.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsService, error) {
	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return NewSheetsServiceWithClient(srv, spreadsheetID), nil
}

// NewSheetsServiceWithClient wraps an already configured sheets client.
func NewSheetsServiceWithClient(srv *sheets.Service, spreadsheetID string) *SheetsService {
	return &SheetsService{service: srv, spreadsheetID: spreadsheetID}
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, reservationsSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// EnsureHeader writes the header row when the sheet is empty.
func (s *SheetsService) EnsureHeader(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, reservationsSheet+"!A1:L1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header row: %w", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, reservationsSheet+"!A1:L1", &sheets.ValueRange{
		Values: [][]interface{}{reservationHeaders},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	return nil
}

// AppendReservation adds one row for record below the existing data.
func (s *SheetsService) AppendReservation(ctx context.Context, record *models.ReservationRecord) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{reservationRowValues(record)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, reservationsRange, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append reservation %s: %w", record.ID, err)
	}
	return nil
}

func reservationRowValues(record *models.ReservationRecord) []interface{} {
	submitted := record.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	r := record.ReservationRequest
	return []interface{}{
		record.ID,
		submitted.Format("2006-01-02 15:04:05"),
		record.UserID,
		r.Name,
		r.Email,
		r.Phone,
		r.Date,
		r.Time,
		r.Guests,
		r.EventType.Label(),
		r.DietaryNotes,
		r.SpecialRequests,
	}
}
