package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

var (
	transferAliases = []string{
		"transfer", "bank_transfer", "bank-transfer", "bank transfer", "bank", "wire",
		"transferencia", "transferencia_bancaria", "transferencia-bancaria", "transferencia bancaria", "transferencia-banco",
	}
	cashAliases = []string{
		"cash", "cash_payment", "efectivo", "pago_efectivo", "pago-efectivo", "pago efectivo", "efectivo_pesos",
	}
	otherAliases = []string{"other", "others", "otro", "otros"}
)

// EncodePaymentNote serializes intent metadata into a payment's note field
func EncodePaymentNote(metadata models.PaymentIntentMetadata) string {
	if metadata.ShareAmount != nil && !utils.IsFinite(*metadata.ShareAmount) {
		metadata.ShareAmount = nil
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// DecodePaymentNote returns the metadata carried by a note, or nil for empty
// or free-text notes. It never fails; legacy notes are arbitrary text.
func DecodePaymentNote(raw string) *models.PaymentIntentMetadata {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil
	}

	metadata := &models.PaymentIntentMetadata{
		Type:               flexString(fields["type"]),
		ExpenseDescription: flexString(fields["expenseDescription"]),
		Memo:               flexString(fields["memo"]),
		PaymentMethod:      flexString(fields["paymentMethod"]),
		AttachmentFileName: flexString(fields["attachmentFileName"]),
	}

	var expenseID, targetID models.FlexID
	_ = expenseID.UnmarshalJSON(orNull(fields["expenseId"]))
	_ = targetID.UnmarshalJSON(orNull(fields["targetMemberId"]))
	if expenseID.Valid {
		metadata.ExpenseID = &expenseID.Value
	}
	if targetID.Valid {
		metadata.TargetMemberID = &targetID.Value
	}

	var shareAmount models.FlexNumber
	_ = shareAmount.UnmarshalJSON(orNull(fields["shareAmount"]))
	metadata.ShareAmount = shareAmount.Ptr()

	var fromReminder models.FlexBool
	_ = fromReminder.UnmarshalJSON(orNull(fields["fromReminder"]))
	metadata.FromReminder = fromReminder.Valid && fromReminder.Value

	return metadata
}

// DescribePaymentMethod maps method aliases onto transfer, cash or other.
// Unknown methods come back lowercased, blank ones empty.
func DescribePaymentMethod(method string) string {
	normalized := utils.NormalizeName(method)
	switch {
	case normalized == "":
		return ""
	case slices.Contains(transferAliases, normalized):
		return "transfer"
	case slices.Contains(cashAliases, normalized):
		return "cash"
	case slices.Contains(otherAliases, normalized):
		return "other"
	}
	return normalized
}

// FormatPaymentNote renders a note for display: the memo when present, a
// sentence built from metadata otherwise, and the raw text for legacy notes.
func FormatPaymentNote(raw string) string {
	fallback := strings.TrimSpace(raw)
	metadata := DecodePaymentNote(raw)
	if metadata == nil {
		return fallback
	}

	if memo := strings.TrimSpace(metadata.Memo); memo != "" {
		return memo
	}

	method := DescribePaymentMethod(metadata.PaymentMethod)
	amount := formatShareAmount(metadata.ShareAmount)

	switch metadata.Type {
	case utils.NoteTypeExpenseSharePayment:
		message := "Payment recorded"
		if description := strings.TrimSpace(metadata.ExpenseDescription); description != "" {
			message = "Payment for " + description
		}
		if amount != "" {
			message += " for " + amount
		}
		return withMethod(message, method)
	case utils.NoteTypeManualPayment:
		message := "Payment recorded"
		if amount != "" {
			message += " for " + amount
		}
		return withMethod(message, method)
	}

	if method != "" {
		return withMethod("Payment recorded", method)
	}
	return fallback
}

func withMethod(message, method string) string {
	if method == "" {
		return message
	}
	return fmt.Sprintf("%s (%s)", message, method)
}

func formatShareAmount(amount *float64) string {
	if amount == nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", utils.RoundMoney(*amount))
}

// flexString reads a JSON string, or the literal text of a number or bool
func flexString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}

func orNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
