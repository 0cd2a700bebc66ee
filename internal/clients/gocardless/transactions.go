package gocardless

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// transactionNamespace seeds the UUIDv5 ids of transactions that carry no upstream id.
var transactionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bankaccountdata.gocardless.com/transactions"))

// FetchTransactions returns booked then pending transactions dated on or after since.
// A 429 for this account is not an error: it yields an empty list so the caller can go
// on with other accounts.
func (c *Client) FetchTransactions(ctx context.Context, accountID string, since time.Time) ([]ExternalTransaction, error) {
	path := "/accounts/" + url.PathEscape(accountID) + "/transactions/"
	if !since.IsZero() {
		path += "?" + url.Values{"date_from": []string{since.In(c.location).Format("2006-01-02")}}.Encode()
	}

	var wire transactionsWire
	if err := c.do(ctx, "fetch transactions", http.MethodGet, path, nil, &wire); err != nil {
		if IsRateLimited(err) {
			c.logger.Warn("Rate limit reached for transactions", zap.String("account_id", accountID))
			return []ExternalTransaction{}, nil
		}
		return nil, err
	}

	txs := make([]ExternalTransaction, 0, len(wire.Transactions.Booked)+len(wire.Transactions.Pending))
	for _, t := range wire.Transactions.Booked {
		txs = append(txs, c.mapTransaction(accountID, t, false))
	}
	for _, t := range wire.Transactions.Pending {
		txs = append(txs, c.mapTransaction(accountID, t, true))
	}
	return txs, nil
}

func (c *Client) mapTransaction(accountID string, t transactionWire, pending bool) ExternalTransaction {
	description := firstNonEmpty(
		t.RemittanceInformationUnstructured,
		t.RemittanceInformationStructured,
		strings.Join(t.RemittanceInformationUnstructuredArray, " "),
		t.AdditionalInformation,
		t.DebtorName,
		t.CreditorName,
	)

	ts, tsRaw := time.Now().In(c.location), ""
	for _, candidate := range []string{t.BookingDateTime, t.ValueDateTime, t.BookingDate, t.ValueDate} {
		if candidate == "" {
			continue
		}
		if parsed, ok := parseTimestamp(candidate, c.location); ok {
			ts, tsRaw = parsed, candidate
			break
		}
	}

	amount := decimal.Zero
	if t.TransactionAmount.Amount.Valid {
		amount = t.TransactionAmount.Amount.Value
	}

	id := firstNonEmpty(
		t.TransactionID,
		t.InternalTransactionID,
		t.EntryReference,
		t.EndToEndID,
		t.PaymentInformationID,
	)
	if id == "" {
		id = FallbackTransactionID(accountID, tsRaw, amount, description)
	}

	tx := ExternalTransaction{
		ID:          id,
		Ts:          ts,
		Amount:      amount,
		Currency:    t.TransactionAmount.Currency,
		Description: description,
		Pending:     pending,
	}
	if b := t.BalanceAfterTransaction; b != nil && b.BalanceAmount.Amount.Valid {
		after := b.BalanceAmount.Amount.Value
		tx.BalanceAfter = &after
	}
	return tx
}

// FallbackTransactionID derives a stable id from the transaction's content, so a
// transaction without any upstream identifier still converges on re-sync.
func FallbackTransactionID(accountID, ts string, amount decimal.Decimal, description string) string {
	key := strings.Join([]string{accountID, ts, amount.String(), description}, "|")
	return uuid.NewSHA1(transactionNamespace, []byte(key)).String()
}
