package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spice-autocategorize/internal/common"
)

// RowAppender appends rows to the end of the transactions sheet.
type RowAppender interface {
	Append(ctx context.Context, rows []ExportRow) error
}

// Writer appends export rows to a Google Sheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

var _ RowAppender = (*Writer)(nil)

// NewWriter creates a new Google Sheets writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		if config.RefreshToken == "" {
			saved, err := LoadToken(config.TokenFile)
			if err != nil {
				return nil, fmt.Errorf("unable to load token file, run `spice export auth` first: %w", err)
			}
			token = saved
		}

		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (w *Writer) retryOptions() common.RetryOptions {
	return common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		// Sheets quotas are per 100 seconds.
		MaxDelay:   100 * time.Second,
		Multiplier: 2.0,
	}
}

// EnsureHeader writes Header to the first row when the sheet is empty.
func (w *Writer) EnsureHeader(ctx context.Context) error {
	headerRange := fmt.Sprintf("%s!A1:K1", w.config.SheetName)

	var existing *sheets.ValueRange
	err := common.WithRetry(ctx, func() error {
		var getErr error
		existing, getErr = w.service.Spreadsheets.Values.Get(w.config.SpreadsheetID, headerRange).Context(ctx).Do()
		return classifyAPIError(getErr)
	}, w.retryOptions())
	if err != nil {
		return fmt.Errorf("failed to read sheet header: %w", err)
	}
	if len(existing.Values) > 0 {
		return nil
	}

	err = common.WithRetry(ctx, func() error {
		_, updateErr := w.service.Spreadsheets.Values.Update(w.config.SpreadsheetID, headerRange,
			&sheets.ValueRange{Values: [][]any{Header}}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return classifyAPIError(updateErr)
	}, w.retryOptions())
	if err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}

	w.logger.Info("wrote sheet header", "sheet", w.config.SheetName)
	return nil
}

// Append adds rows after the last row of the sheet in one API call.
func (w *Writer) Append(ctx context.Context, rows []ExportRow) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = row.Values()
	}

	err := common.WithRetry(ctx, func() error {
		_, appendErr := w.service.Spreadsheets.Values.Append(w.config.SpreadsheetID, w.config.SheetName,
			&sheets.ValueRange{Values: values}).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return classifyAPIError(appendErr)
	}, w.retryOptions())
	if err != nil {
		return fmt.Errorf("failed to append %d rows: %w", len(rows), err)
	}

	w.logger.Info("appended rows", "sheet", w.config.SheetName, "rows", len(rows))
	return nil
}

// classifyAPIError marks quota errors as rate limits, server errors as
// retryable and everything else as permanent.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}
