package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"debts/internal/core"
	"debts/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is used when GOOGLE_SHEET_NAME is not set.
const DefaultSheetName = "Debts"

// Client stores the ledger in one tab of a spreadsheet, laid out like the
// CSV file: a from,to,amount,date header in row 1 and one debt per row.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	decoder       ledger.Decoder
}

// Ensure interface conformance
var _ ledger.Store = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Debts")
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// GOOGLE_APPLICATION_CREDENTIALS, or an OAuth client
// (GOOGLE_OAUTH_CLIENT_JSON / GOOGLE_OAUTH_CLIENT_FILE) plus the token saved
// by debts-oauth-init in GOOGLE_OAUTH_TOKEN_FILE.
func NewFromEnv(ctx context.Context, roster core.Roster, strict bool) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	return Open(ctx, spreadsheetID, os.Getenv("GOOGLE_SHEET_NAME"), roster, strict)
}

// Open connects to spreadsheetID with credentials from the environment and
// stores the ledger in the sheetName tab (DefaultSheetName when empty).
func Open(ctx context.Context, spreadsheetID, sheetName string, roster core.Roster, strict bool) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, spreadsheetID, sheetName, roster, strict), nil
}

// SheetName returns the tab holding the ledger.
func (c *Client) SheetName() string {
	return c.sheetName
}

// New wraps an existing Sheets service. An empty sheetName selects
// DefaultSheetName.
func New(svc *gsheet.Service, spreadsheetID, sheetName string, roster core.Roster, strict bool) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		decoder:       ledger.Decoder{Roster: roster, Strict: strict},
	}
}

// newSheetsService prefers service account credentials and falls back to a
// stored OAuth token.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		ts, err := oauthTokenSource(ctx)
		if errors.Is(err, ErrNoOAuthClient) {
			return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS or an OAuth client with a token from debts-oauth-init)")
		}
		if err != nil {
			return nil, fmt.Errorf("oauth credentials: %w", err)
		}
		slog.DebugContext(ctx, "Creating Google Sheets service with OAuth token", "token_file", TokenFile())
		service, err := gsheet.NewService(ctx, goption.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Load implements ledger.Store. An empty tab is an empty ledger.
func (c *Client) Load(ctx context.Context) ([]core.DebtEntry, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := c.columns(1)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	records, first := fromValues(resp.Values)
	return c.decoder.Decode(ctx, records, first)
}

// Save implements ledger.Store. The new rows are written over the old ones
// first and the leftover tail is cleared afterwards, so a failed write never
// leaves the tab empty.
func (c *Client) Save(ctx context.Context, entries []core.DebtEntry) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	values := toValues(entries)

	rng := fmt.Sprintf("%s!A1:D%d", c.sheetName, len(values))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	tail := c.columns(len(values) + 1)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, tail, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", tail, err)
	}

	slog.InfoContext(ctx, "Ledger saved to Google Sheets",
		"sheet", c.sheetName,
		"entries", len(entries))
	return nil
}

// columns returns the A:D range starting at fromRow.
func (c *Client) columns(fromRow int) string {
	return fmt.Sprintf("%s!A%d:D", c.sheetName, fromRow)
}
