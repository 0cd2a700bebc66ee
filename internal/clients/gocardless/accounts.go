package gocardless

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const fallbackNamePrefix = "Account "

// balancePriority ranks balance types from most to least trustworthy.
var balancePriority = []string{
	"closingBooked",
	"closingAvailable",
	"interimAvailable",
	"interimBooked",
	"expected",
	"current",
}

// ListAccounts returns the accounts linked to a requisition. A failed details call for one
// account yields a placeholder entry instead of failing the listing; when the aggregator
// is rate limiting, every entry ends up a placeholder (see AllFallbackNames).
func (c *Client) ListAccounts(ctx context.Context, connectionID string) ([]ExternalAccount, error) {
	req, err := c.GetRequisition(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	accounts := make([]ExternalAccount, 0, len(req.Accounts))
	for _, accountID := range req.Accounts {
		acc, err := c.accountDetails(ctx, accountID)
		if err != nil {
			c.logger.Warn("Failed to fetch account details, using placeholder",
				zap.String("account_id", accountID),
				zap.Error(err),
			)
			accounts = append(accounts, c.fallbackAccount(accountID))
			continue
		}
		accounts = append(accounts, *acc)
	}

	return accounts, nil
}

func (c *Client) accountDetails(ctx context.Context, accountID string) (*ExternalAccount, error) {
	var details accountDetailsWire
	if err := c.do(ctx, "read account details", http.MethodGet, "/accounts/"+url.PathEscape(accountID)+"/details/", nil, &details); err != nil {
		return nil, err
	}

	a := details.Account
	name := firstNonEmpty(string(a.Name), a.IBAN, a.ResourceID, accountID)
	return &ExternalAccount{
		ID:       accountID,
		Name:     name,
		IBAN:     a.IBAN,
		Currency: a.Currency,
	}, nil
}

func (c *Client) fallbackAccount(accountID string) ExternalAccount {
	return ExternalAccount{
		ID:       accountID,
		Name:     FallbackAccountName(accountID),
		Currency: c.homeCurrency,
		Degraded: true,
	}
}

// GetBalances returns every balance entry the aggregator reports for the account.
func (c *Client) GetBalances(ctx context.Context, accountID string) ([]Balance, error) {
	var wire balancesWire
	if err := c.do(ctx, "read balances", http.MethodGet, "/accounts/"+url.PathEscape(accountID)+"/balances/", nil, &wire); err != nil {
		return nil, err
	}

	balances := make([]Balance, 0, len(wire.Balances))
	for _, b := range wire.Balances {
		balance := Balance{
			Type:      b.BalanceType,
			Amount:    b.BalanceAmount.Amount.Value,
			HasAmount: b.BalanceAmount.Amount.Valid,
			Currency:  b.BalanceAmount.Currency,
		}
		if ref := firstNonEmpty(b.ReferenceDateTime, b.ReferenceDate); ref != "" {
			if ts, ok := parseTimestamp(ref, c.location); ok {
				balance.ReferenceTime = &ts
			}
		}
		balances = append(balances, balance)
	}
	return balances, nil
}

// PickBestBalance selects the entry with the highest-priority type, falling back to the
// first entry when no type is recognised. It returns nil for an empty list.
func PickBestBalance(balances []Balance) *Balance {
	if len(balances) == 0 {
		return nil
	}

	byType := make(map[string]int, len(balances))
	for i, b := range balances {
		if b.Type == "" {
			continue
		}
		if _, seen := byType[b.Type]; !seen {
			byType[b.Type] = i
		}
	}

	for _, t := range balancePriority {
		if i, ok := byType[t]; ok {
			return &balances[i]
		}
	}
	return &balances[0]
}

// FallbackAccountName is the placeholder name used when account details are unavailable.
func FallbackAccountName(accountID string) string {
	short := accountID
	if len(short) > 8 {
		short = short[len(short)-8:]
	}
	return fallbackNamePrefix + short
}

func IsFallbackAccountName(name string) bool {
	return strings.HasPrefix(name, fallbackNamePrefix)
}

// AllFallbackNames reports the degraded listing condition: a non-empty list where every
// account carries a placeholder name. It usually means the aggregator is rate limiting.
func AllFallbackNames(accounts []ExternalAccount) bool {
	if len(accounts) == 0 {
		return false
	}
	for _, a := range accounts {
		if !IsFallbackAccountName(a.Name) {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts full timestamps and bare dates; values without a zone are read
// in loc.
func parseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
