package saleor

import (
	"context"
	"encoding/json"
	"time"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/model"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
)

var (
	reportSuccessCounter          = metrics.GetOrCreateCounter(`transaction_report_total{result="success"}`)
	reportAlreadyProcessedCounter = metrics.GetOrCreateCounter(`transaction_report_total{result="already_processed"}`)
	reportErrorCounter            = metrics.GetOrCreateCounter(`transaction_report_total{result="error"}`)

	reportDurationHistogram = metrics.GetOrCreateHistogram(`transaction_report_duration_milliseconds`)
)

type ReportResult struct {
	AlreadyProcessed bool
}

type reportResponse struct {
	TransactionEventReport *struct {
		AlreadyProcessed bool           `json:"alreadyProcessed"`
		Errors           []graphQLError `json:"errors"`
	} `json:"transactionEventReport"`
}

// ReportTransactionEvent submits the report. Saleor deduplicates on
// (transactionId, pspReference, type) and answers alreadyProcessed for repeats.
func (c *Client) ReportTransactionEvent(ctx context.Context, auth model.AuthData, report *model.TransactionEventReport) (*ReportResult, error) {
	startTime := time.Now()
	defer func() {
		reportDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
	}()

	variables := map[string]any{
		"id":               report.TransactionID,
		"amount":           json.Number(report.Amount.String()),
		"availableActions": report.AvailableActions,
		"externalUrl":      report.ExternalURL,
		"message":          report.Message,
		"pspReference":     report.PSPReference,
		"time":             report.Time.Format(time.RFC3339),
		"type":             report.Type,
	}

	var resp reportResponse
	err := c.execute(ctx, auth.SaleorAPIURL, auth.Token, transactionEventReportMutation, variables, &resp)
	if err != nil {
		reportErrorCounter.Inc()
		var gqlErrors GraphQLErrors
		if errors.As(err, &gqlErrors) {
			return nil, errors.WithStack(&apperror.UnexpectedReportError{Errors: gqlErrors})
		}
		return nil, errors.WithStack(&apperror.UnexpectedReportError{Errors: []string{err.Error()}})
	}

	if resp.TransactionEventReport == nil {
		reportErrorCounter.Inc()
		return nil, errors.WithStack(&apperror.UnexpectedReportError{Errors: []string{"empty transactionEventReport response"}})
	}

	if len(resp.TransactionEventReport.Errors) > 0 {
		reportErrorCounter.Inc()
		messages := make([]string, 0, len(resp.TransactionEventReport.Errors))
		for _, e := range resp.TransactionEventReport.Errors {
			messages = append(messages, e.Message)
		}
		return nil, errors.WithStack(&apperror.UnexpectedReportError{Errors: messages})
	}

	if resp.TransactionEventReport.AlreadyProcessed {
		reportAlreadyProcessedCounter.Inc()
	} else {
		reportSuccessCounter.Inc()
	}

	return &ReportResult{AlreadyProcessed: resp.TransactionEventReport.AlreadyProcessed}, nil
}
