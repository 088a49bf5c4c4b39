package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

type graphQLRequest struct {
	Query     string          `json:"query"`
	Variables json.RawMessage `json:"variables"`
}

type reportKey struct {
	TransactionID string
	PSPReference  string
	Type          string
}

type reportVariables struct {
	ID           string `json:"id"`
	PSPReference string `json:"pspReference"`
	Type         string `json:"type"`
}

type metadataItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type channel struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	CurrencyCode string `json:"currencyCode"`
}

// mockSaleor answers the GraphQL operations the app sends and deduplicates
// transaction event reports the way Saleor does.
type mockSaleor struct {
	mu       sync.Mutex
	appID    string
	reports  map[reportKey]int
	metadata map[string]string
	channels []channel
	logger   *slog.Logger
}

func newMockSaleor(appID string, logger *slog.Logger) *mockSaleor {
	return &mockSaleor{
		appID:    appID,
		reports:  map[reportKey]int{},
		metadata: map[string]string{},
		channels: []channel{
			{ID: "Q2hhbm5lbDox", Name: "Default", Slug: "default-channel", CurrencyCode: "USD"},
			{ID: "Q2hhbm5lbDoy", Name: "Europe", Slug: "channel-pln", CurrencyCode: "PLN"},
		},
		logger: logger,
	}
}

func (m *mockSaleor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphql/", m.graphql)
	mux.HandleFunc("GET /.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"keys": []any{}})
	})
	return mux
}

func (m *mockSaleor) graphql(w http.ResponseWriter, r *http.Request) {
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []map[string]string{{"message": "invalid request"}}})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case strings.Contains(req.Query, "mutation TransactionEventReport"):
		m.reportTransactionEvent(w, req.Variables)
	case strings.Contains(req.Query, "query FetchAppPrivateMetadata"):
		items := make([]metadataItem, 0, len(m.metadata))
		for k, v := range m.metadata {
			items = append(items, metadataItem{Key: k, Value: v})
		}
		writeData(w, map[string]any{"app": map[string]any{"id": m.appID, "privateMetadata": items}})
	case strings.Contains(req.Query, "query FetchAppId"):
		writeData(w, map[string]any{"app": map[string]any{"id": m.appID}})
	case strings.Contains(req.Query, "query FetchChannels"):
		writeData(w, map[string]any{"channels": m.channels})
	case strings.Contains(req.Query, "mutation UpdateAppPrivateMetadata"):
		var vars struct {
			Input []metadataItem `json:"input"`
		}
		_ = json.Unmarshal(req.Variables, &vars)
		for _, item := range vars.Input {
			m.metadata[item.Key] = item.Value
		}
		writeData(w, map[string]any{"updatePrivateMetadata": map[string]any{"errors": []any{}}})
	case strings.Contains(req.Query, "mutation DeleteAppPrivateMetadata"):
		var vars struct {
			Keys []string `json:"keys"`
		}
		_ = json.Unmarshal(req.Variables, &vars)
		for _, key := range vars.Keys {
			delete(m.metadata, key)
		}
		writeData(w, map[string]any{"deletePrivateMetadata": map[string]any{"errors": []any{}}})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"errors": []map[string]string{{"message": "unsupported operation"}}})
	}
}

func (m *mockSaleor) reportTransactionEvent(w http.ResponseWriter, raw json.RawMessage) {
	var vars reportVariables
	if err := json.Unmarshal(raw, &vars); err != nil || vars.ID == "" {
		writeData(w, map[string]any{"transactionEventReport": map[string]any{
			"alreadyProcessed": false,
			"errors":           []map[string]string{{"field": "id", "message": "missing transaction id", "code": "INVALID"}},
		}})
		return
	}

	key := reportKey{TransactionID: vars.ID, PSPReference: vars.PSPReference, Type: vars.Type}
	m.reports[key]++
	if m.reports[key] > 1 {
		m.logger.Info("Duplicate transaction event report", "transactionId", vars.ID, "type", vars.Type, "count", m.reports[key])
	}

	writeData(w, map[string]any{"transactionEventReport": map[string]any{
		"alreadyProcessed": m.reports[key] > 1,
		"errors":           []any{},
	}})
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
