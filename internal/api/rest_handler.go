package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"account_ledger/internal/domain"
	"account_ledger/internal/ledger"
	"account_ledger/pkg/crypto"
	"account_ledger/pkg/metrics"
	"account_ledger/pkg/validator"
)

type APIHandler struct {
	accounts       *ledger.AccountService
	transactions   *ledger.TransactionService
	transfers      *ledger.TransferService
	interest       *ledger.InterestService
	statements     *ledger.StatementService
	metrics        *metrics.MetricsCollector
	signer         *crypto.Signer
	validator      *validator.RequestValidator
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(
	accounts *ledger.AccountService,
	transactions *ledger.TransactionService,
	transfers *ledger.TransferService,
	interest *ledger.InterestService,
	statements *ledger.StatementService,
	collector *metrics.MetricsCollector,
	signer *crypto.Signer,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		accounts:       accounts,
		transactions:   transactions,
		transfers:      transfers,
		interest:       interest,
		statements:     statements,
		metrics:        collector,
		signer:         signer,
		validator:      validator.NewRequestValidator(),
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

func (h *APIHandler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", h.CreateAccountHandler)
		r.Post("/transfers", h.TransferHandler)

		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Get("/", h.GetAccountHandler)
			r.Post("/deposit", h.DepositHandler)
			r.Post("/withdraw", h.WithdrawHandler)
			r.Post("/interest", h.ApplyInterestHandler)
			r.Put("/limits", h.SetLimitsHandler)
			r.Post("/limits/reset", h.ResetLimitsHandler)
			r.Post("/security/failed-attempt", h.RecordFailedAttemptHandler)
			r.Post("/security/reset", h.ResetSecurityHandler)
			r.Post("/close", h.CloseAccountHandler)
			r.Get("/transactions", h.ListTransactionsHandler)
			r.Get("/statement", h.StatementHandler)
		})
	})
	r.Get("/api/health", h.HealthCheckHandler)

	return r
}

type CreateAccountRequest struct {
	Type           string          `json:"type"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

type AmountRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Signature string          `json:"signature,omitempty"`
}

type TransferRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Timestamp            int64           `json:"timestamp,omitempty"`
	Signature            string          `json:"signature,omitempty"`
}

type LimitsRequest struct {
	DailyLimit   decimal.Decimal `json:"daily_limit"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
}

type AccountResponse struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	Status           string `json:"status"`
	Balance          string `json:"balance"`
	MinimumBalance   string `json:"minimum_balance"`
	OverdraftLimit   string `json:"overdraft_limit"`
	DailySpent       string `json:"daily_spent"`
	MonthlySpent     string `json:"monthly_spent"`
	TransactionCount int    `json:"transaction_count"`
	Locked           bool   `json:"locked"`
}

type TransactionResponse struct {
	ID                   string `json:"id"`
	AccountID            string `json:"account_id"`
	Type                 string `json:"type"`
	Amount               string `json:"amount"`
	Timestamp            string `json:"timestamp"`
	DestinationAccountID string `json:"destination_account_id,omitempty"`
}

type InterestResponse struct {
	AccountID string `json:"account_id"`
	Interest  string `json:"interest"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *APIHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	account, err := h.accounts.CreateAccount(ctx, req.Type, req.InitialDeposit)
	h.recordOperation("create_account", startTime, err)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.updateBalanceMetric(account)
	h.sendJSON(w, accountResponse(account), http.StatusCreated)
}

func (h *APIHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	account, err := h.accounts.GetAccount(ctx, accountID)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendJSON(w, accountResponse(account), http.StatusOK)
}

func (h *APIHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	h.handleAmountOperation(w, r, "deposit", h.transactions.Deposit)
}

func (h *APIHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	h.handleAmountOperation(w, r, "withdraw", h.transactions.Withdraw)
}

func (h *APIHandler) handleAmountOperation(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	execute func(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error),
) {
	startTime := time.Now()
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if err := h.validator.ValidateAmount(req.Amount); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}
	if !h.verifySignature(w, accountID.String(), req.Amount, req.Timestamp, req.Signature) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	tx, err := execute(ctx, accountID, req.Amount)
	h.recordOperation(operation, startTime, err)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	if account, accErr := h.accounts.GetAccount(ctx, accountID); accErr == nil {
		h.updateBalanceMetric(account)
	}
	h.sendJSON(w, transactionResponse(tx), http.StatusCreated)
}

func (h *APIHandler) TransferHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if err := h.validator.ValidateTransfer(req.SourceAccountID, req.DestinationAccountID, req.Amount); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}
	sourceID, _ := uuid.Parse(req.SourceAccountID)
	destinationID, _ := uuid.Parse(req.DestinationAccountID)
	if !h.verifySignature(w, req.SourceAccountID, req.Amount, req.Timestamp, req.Signature) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	tx, err := h.transfers.Transfer(ctx, sourceID, destinationID, req.Amount)
	h.recordOperation("transfer", startTime, err)
	if err != nil {
		if errors.Is(err, ledger.ErrReversalFailed) && h.metrics != nil {
			h.metrics.RecordReversal()
		}
		h.sendDomainError(w, err)
		return
	}

	for _, id := range []uuid.UUID{sourceID, destinationID} {
		if account, accErr := h.accounts.GetAccount(ctx, id); accErr == nil {
			h.updateBalanceMetric(account)
		}
	}
	h.sendJSON(w, transactionResponse(tx), http.StatusCreated)
}

func (h *APIHandler) ApplyInterestHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	interest, err := h.interest.ApplyInterest(ctx, accountID)
	h.recordOperation("apply_interest", startTime, err)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, InterestResponse{
		AccountID: accountID.String(),
		Interest:  interest.StringFixed(2),
	}, http.StatusOK)
}

func (h *APIHandler) SetLimitsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req LimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.accounts.SetLimits(ctx, accountID, req.DailyLimit, req.MonthlyLimit); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendJSON(w, map[string]string{"status": "limits set"}, http.StatusOK)
}

func (h *APIHandler) ResetLimitsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.accounts.ResetLimits(ctx, accountID); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendJSON(w, map[string]string{"status": "limits reset"}, http.StatusOK)
}

func (h *APIHandler) RecordFailedAttemptHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.accounts.RecordFailedAttempt(ctx, accountID); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendJSON(w, map[string]string{"status": "attempt recorded"}, http.StatusOK)
}

func (h *APIHandler) ResetSecurityHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.accounts.ResetSecurityStatus(ctx, accountID); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendJSON(w, map[string]string{"status": "security status reset"}, http.StatusOK)
}

func (h *APIHandler) CloseAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.accounts.CloseAccount(ctx, accountID); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendJSON(w, map[string]string{"status": "account closed"}, http.StatusOK)
}

func (h *APIHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	txs, err := h.transactions.ListTransactions(ctx, accountID)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	responses := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, transactionResponse(tx))
	}
	h.sendJSON(w, responses, http.StatusOK)
}

func (h *APIHandler) StatementHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	from, err := parseDateParam(r.URL.Query().Get("from"), time.Time{})
	if err != nil {
		h.sendError(w, "Invalid 'from' date", http.StatusBadRequest, "INVALID_DATE")
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"), time.Now().UTC())
	if err != nil {
		h.sendError(w, "Invalid 'to' date", http.StatusBadRequest, "INVALID_DATE")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	statement, err := h.statements.GenerateStatement(ctx, accountID, from, to)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "statement_"+accountID.String()+".csv"))
	if err := statement.WriteCSV(w); err != nil {
		h.logger.Error("Failed to write statement", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := h.validator.ValidateAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest, "INVALID_ACCOUNT_ID")
		return uuid.Nil, false
	}
	return id, true
}

// verifySignature checks the request's HMAC when one is supplied and a
// signing key is configured; unsigned requests pass through.
func (h *APIHandler) verifySignature(w http.ResponseWriter, accountID string, amount decimal.Decimal, timestamp int64, signature string) bool {
	if h.signer == nil || signature == "" {
		return true
	}
	if valid, err := h.signer.VerifyOperation(accountID, amount, timestamp, signature); !valid || err != nil {
		h.sendError(w, "Invalid signature", http.StatusUnauthorized, "INVALID_SIGNATURE")
		return false
	}
	return true
}

func (h *APIHandler) recordOperation(operation string, startTime time.Time, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordOperation(operation, time.Since(startTime), err == nil)
}

func (h *APIHandler) updateBalanceMetric(account *domain.Account) {
	if h.metrics == nil {
		return
	}
	h.metrics.UpdateAccountBalance(account.ID.String(), string(account.Type), account.Balance.InexactFloat64())
}

func (h *APIHandler) sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		h.sendError(w, err.Error(), http.StatusNotFound, "ACCOUNT_NOT_FOUND")
	case errors.Is(err, domain.ErrInvalidAmount):
		h.sendError(w, err.Error(), http.StatusBadRequest, "INVALID_AMOUNT")
	case errors.Is(err, domain.ErrInvalidAccountStatus):
		h.sendError(w, err.Error(), http.StatusBadRequest, "INVALID_ACCOUNT_STATUS")
	case errors.Is(err, domain.ErrInsufficientFunds):
		h.sendError(w, err.Error(), http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS")
	case errors.Is(err, domain.ErrTransactionLimitExceeded):
		h.sendError(w, err.Error(), http.StatusTooManyRequests, "LIMIT_EXCEEDED")
	case errors.Is(err, domain.ErrAccountLocked):
		h.sendError(w, err.Error(), http.StatusLocked, "ACCOUNT_LOCKED")
	case errors.Is(err, ledger.ErrSameAccount), errors.Is(err, ledger.ErrUnknownAccountType):
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
	case errors.Is(err, ledger.ErrReversalFailed):
		h.logger.Error("ledger inconsistency detected", slog.String("error", err.Error()))
		h.sendError(w, err.Error(), http.StatusInternalServerError, "REVERSAL_FAILED")
	default:
		h.sendError(w, "Internal server error", http.StatusInternalServerError, "SERVER_ERROR")
	}
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

func accountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:               account.ID.String(),
		Type:             string(account.Type),
		Status:           string(account.Status),
		Balance:          account.Balance.StringFixed(2),
		MinimumBalance:   account.MinimumBalance.StringFixed(2),
		OverdraftLimit:   account.OverdraftLimit.StringFixed(2),
		DailySpent:       account.DailySpent.StringFixed(2),
		MonthlySpent:     account.MonthlySpent.StringFixed(2),
		TransactionCount: account.TransactionCount,
		Locked:           account.Locked,
	}
}

func transactionResponse(tx *domain.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:        tx.ID.String(),
		AccountID: tx.AccountID.String(),
		Type:      string(tx.Type),
		Amount:    tx.Amount.StringFixed(2),
		Timestamp: tx.Timestamp.Format(time.RFC3339),
	}
	if tx.DestinationAccountID != nil {
		response.DestinationAccountID = tx.DestinationAccountID.String()
	}
	return response
}

func parseDateParam(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
