package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Largest integer a float64 carries exactly
const maxExactID = 1 << 53

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseMemberID parses a positive integral id from text
func ParseMemberID(text string) (int64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return idFromFloat(value)
}

func idFromFloat(value float64) (int64, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, false
	}
	if value <= 0 || value > maxExactID {
		return 0, false
	}
	return int64(value), true
}

// parseNumber reads a JSON number or numeric string as a finite float
func parseNumber(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false
	}
	text := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return 0, false
		}
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// FlexNumber is a number that may arrive as a JSON number or a numeric string.
// Anything else decodes as absent.
type FlexNumber struct {
	Value float64
	Valid bool
}

// NewFlexNumber returns a present FlexNumber
func NewFlexNumber(value float64) FlexNumber {
	return FlexNumber{Value: value, Valid: true}
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	value, ok := parseNumber(data)
	*n = FlexNumber{Value: value, Valid: ok}
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns nil when absent
func (n FlexNumber) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	value := n.Value
	return &value
}

// FlexID is a positive integral id given as a number, a numeric string,
// or an object carrying id or memberId.
type FlexID struct {
	Value int64
	Valid bool
}

// NewFlexID returns a present FlexID
func NewFlexID(value int64) FlexID {
	return FlexID{Value: value, Valid: true}
}

func (id *FlexID) UnmarshalJSON(data []byte) error {
	ref := MemberRef{}
	_ = ref.UnmarshalJSON(data)
	*id = FlexID{Value: ref.ID, Valid: ref.Valid}
	return nil
}

func (id FlexID) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.Value, 10)), nil
}

// MemberRef is a reference to a member: a bare id or an {id, name} object
type MemberRef struct {
	ID    int64
	Name  string
	Valid bool
}

func (r *MemberRef) UnmarshalJSON(data []byte) error {
	*r = MemberRef{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			ID       json.RawMessage `json:"id"`
			MemberID json.RawMessage `json:"memberId"`
			Name     json.RawMessage `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil
		}
		for _, candidate := range []json.RawMessage{obj.ID, obj.MemberID} {
			if value, ok := parseNumber(candidate); ok {
				if id, ok := idFromFloat(value); ok {
					r.ID, r.Valid = id, true
					break
				}
			}
		}
		var name string
		if json.Unmarshal(obj.Name, &name) == nil {
			r.Name = strings.TrimSpace(name)
		}
		return nil
	}
	if value, ok := parseNumber(trimmed); ok {
		r.ID, r.Valid = idFromFloat(value)
	}
	return nil
}

// FlexTime accepts RFC3339 and date-only strings or epoch milliseconds.
// Unparseable values decode as the zero time.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		if millis, ok := parseNumber(trimmed); ok {
			t.Time = time.UnixMilli(int64(millis)).UTC()
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil
	}
	t.Time = ParseTimestamp(s)
	return nil
}

// ParseTimestamp parses the timestamp layouts seen upstream, zero on failure
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// FlexBool accepts booleans, "true"/"false" and 1/0
type FlexBool struct {
	Value bool
	Valid bool
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	*b = FlexBool{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var direct bool
	if json.Unmarshal(data, &direct) == nil {
		*b = FlexBool{Value: direct, Valid: true}
		return nil
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			*b = FlexBool{Value: parsed, Valid: true}
		}
		return nil
	}
	if value, ok := parseNumber(data); ok {
		*b = FlexBool{Value: value != 0, Valid: true}
	}
	return nil
}

// RawMember is a member as returned by the group detail provider
type RawMember struct {
	ID       FlexID `json:"id"`
	MemberID FlexID `json:"memberId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// RawShare is an expense share in any of its upstream shapes
type RawShare struct {
	MemberID   FlexID     `json:"memberId"`
	Member     MemberRef  `json:"member"`
	Amount     FlexNumber `json:"amount"`
	Percentage FlexNumber `json:"percentage"`
}

// RawExpense is an expense in any of its upstream shapes
type RawExpense struct {
	ID          FlexID     `json:"id"`
	GroupID     FlexID     `json:"groupId"`
	Amount      FlexNumber `json:"amount"`
	Payer       MemberRef  `json:"payer"`
	PaidBy      MemberRef  `json:"paidBy"`
	PayerID     FlexID     `json:"payerId"`
	CreatedAt   FlexTime   `json:"createdAt"`
	Date        FlexTime   `json:"date"`
	Description string     `json:"description"`
	Note        string     `json:"note"`
	Tag         string     `json:"tag"`
	Shares      []RawShare `json:"shares"`
}

// RawPayment is a payment in any of its upstream shapes
type RawPayment struct {
	ID            FlexID     `json:"id"`
	GroupID       FlexID     `json:"groupId"`
	Amount        FlexNumber `json:"amount"`
	FromMember    MemberRef  `json:"fromMember"`
	ToMember      MemberRef  `json:"toMember"`
	FromMemberID  FlexID     `json:"fromMemberId"`
	ToMemberID    FlexID     `json:"toMemberId"`
	Confirmed     FlexBool   `json:"confirmed"`
	Note          string     `json:"note"`
	PaymentMethod string     `json:"paymentMethod"`
	CreatedAt     FlexTime   `json:"createdAt"`
}

// RawAggregatedShare is a per-member summary row
type RawAggregatedShare struct {
	MemberID              FlexID     `json:"memberId"`
	MemberName            string     `json:"memberName"`
	TotalPaid             FlexNumber `json:"totalPaid"`
	TotalOwed             FlexNumber `json:"totalOwed"`
	Balance               FlexNumber `json:"balance"`
	BalanceBeforePayments FlexNumber `json:"balanceBeforePayments"`
	BalanceAdjustment     FlexNumber `json:"balanceAdjustment"`
	TotalAmount           FlexNumber `json:"totalAmount"`
}

// RawGroupSnapshot is a group detail response as the provider returns it
type RawGroupSnapshot struct {
	ID                FlexID               `json:"id"`
	Name              string               `json:"name"`
	TotalAmount       FlexNumber           `json:"totalAmount"`
	Members           []RawMember          `json:"members"`
	Expenses          []RawExpense         `json:"expenses"`
	AggregatedShares  []RawAggregatedShare `json:"aggregatedShares"`
	BalanceOriginal   BalanceMap           `json:"balanceOriginal"`
	BalanceAdjusted   BalanceMap           `json:"balanceAdjusted"`
	ConfirmedPayments []RawPayment         `json:"confirmedPayments"`
	PendingPayments   []RawPayment         `json:"pendingPayments"`
}
