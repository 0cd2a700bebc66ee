package gocardless

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Institution as listed by the aggregator. Country is derived from the first entry of
// the upstream countries list when the singular field is absent.
type Institution struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Country   string   `json:"country,omitempty"`
	Countries []string `json:"countries,omitempty"`
	Logo      string   `json:"logo,omitempty"`
	Website   string   `json:"website,omitempty"`
	BIC       string   `json:"bic,omitempty"`
}

func (i Institution) CountryCode() string {
	if i.Country != "" {
		return i.Country
	}
	if len(i.Countries) > 0 {
		return i.Countries[0]
	}
	return ""
}

type Requisition struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	InstitutionID string   `json:"institution_id"`
	Accounts      []string `json:"accounts"`
	Link          string   `json:"link"`
	Reference     string   `json:"reference,omitempty"`
}

// StartedConnection is the result of creating a requisition: the user must be sent to
// Redirect to give consent.
type StartedConnection struct {
	Redirect     string `json:"redirect"`
	ConnectionID string `json:"requisitionId"`
}

// ExternalAccount is an aggregator-linked account. Degraded is set when the details call
// failed and Name/Currency are placeholders.
type ExternalAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IBAN     string `json:"iban,omitempty"`
	Currency string `json:"currency,omitempty"`
	Degraded bool   `json:"-"`
}

// Balance is one typed balance entry of an account.
type Balance struct {
	Type          string
	Amount        decimal.Decimal
	HasAmount     bool
	Currency      string
	ReferenceTime *time.Time
}

// ExternalTransaction is one booked or pending transaction in its original currency.
type ExternalTransaction struct {
	ID           string
	Ts           time.Time
	Amount       decimal.Decimal
	Currency     string
	Description  string
	BalanceAfter *decimal.Decimal
	Pending      bool
}

// Amount accepts both the quoted decimal strings the API sends and bare JSON numbers.
// Unparseable values decode as zero with Valid unset instead of failing the whole payload.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if raw == "" || raw == "null" {
		*a = Amount{}
		return nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		*a = Amount{}
		return nil
	}
	*a = Amount{Value: v, Valid: true}
	return nil
}

// flexString decodes either a string or an array of strings (first element wins).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			*f = flexString(list[0])
		}
		return nil
	}
	*f = ""
	return nil
}

type amountWire struct {
	Amount   Amount `json:"amount"`
	Currency string `json:"currency"`
}

type accountDetailsWire struct {
	Account struct {
		ResourceID string     `json:"resourceId"`
		IBAN       string     `json:"iban"`
		Currency   string     `json:"currency"`
		Name       flexString `json:"name"`
		OwnerName  string     `json:"ownerName"`
		Product    string     `json:"product"`
	} `json:"account"`
}

type balancesWire struct {
	Balances []struct {
		BalanceAmount      amountWire `json:"balanceAmount"`
		BalanceType        string     `json:"balanceType"`
		ReferenceDate      string     `json:"referenceDate"`
		ReferenceDateTime  string     `json:"referenceDateTime"`
		LastChangeDateTime string     `json:"lastChangeDateTime"`
	} `json:"balances"`
}

type transactionWire struct {
	TransactionID                          string     `json:"transactionId"`
	InternalTransactionID                  string     `json:"internalTransactionId"`
	EntryReference                         string     `json:"entryReference"`
	EndToEndID                             string     `json:"endToEndId"`
	PaymentInformationID                   string     `json:"paymentInformationId"`
	BookingDate                            string     `json:"bookingDate"`
	ValueDate                              string     `json:"valueDate"`
	BookingDateTime                        string     `json:"bookingDateTime"`
	ValueDateTime                          string     `json:"valueDateTime"`
	TransactionAmount                      amountWire `json:"transactionAmount"`
	RemittanceInformationUnstructured      string     `json:"remittanceInformationUnstructured"`
	RemittanceInformationStructured        string     `json:"remittanceInformationStructured"`
	RemittanceInformationUnstructuredArray []string   `json:"remittanceInformationUnstructuredArray"`
	AdditionalInformation                  string     `json:"additionalInformation"`
	DebtorName                             string     `json:"debtorName"`
	CreditorName                           string     `json:"creditorName"`
	BalanceAfterTransaction                *struct {
		BalanceAmount amountWire `json:"balanceAmount"`
	} `json:"balanceAfterTransaction"`
}

type transactionsWire struct {
	Transactions struct {
		Booked  []transactionWire `json:"booked"`
		Pending []transactionWire `json:"pending"`
	} `json:"transactions"`
}
