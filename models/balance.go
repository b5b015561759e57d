package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MemberBalance is one member's signed net balance.
// Positive means the member is owed money.
type MemberBalance struct {
	MemberID int64   `json:"memberId"`
	Balance  float64 `json:"balance"`
}

// BalanceMap maps member ids to balances and keeps insertion order.
// Order matters: it is the tie-break for settlement generation.
type BalanceMap []MemberBalance

// Get returns the balance for memberID. A missing member means no data, not zero.
func (m BalanceMap) Get(memberID int64) (float64, bool) {
	for _, entry := range m {
		if entry.MemberID == memberID {
			return entry.Balance, true
		}
	}
	return 0, false
}

// Set stores a balance, keeping the member's original position if present
func (m *BalanceMap) Set(memberID int64, balance float64) {
	for i := range *m {
		if (*m)[i].MemberID == memberID {
			(*m)[i].Balance = balance
			return
		}
	}
	*m = append(*m, MemberBalance{MemberID: memberID, Balance: balance})
}

// Add adds delta to a member's balance, inserting the member at the end if new
func (m *BalanceMap) Add(memberID int64, delta float64) {
	for i := range *m {
		if (*m)[i].MemberID == memberID {
			(*m)[i].Balance += delta
			return
		}
	}
	*m = append(*m, MemberBalance{MemberID: memberID, Balance: delta})
}

// Clone returns an independent copy
func (m BalanceMap) Clone() BalanceMap {
	if m == nil {
		return nil
	}
	out := make(BalanceMap, len(m))
	copy(out, m)
	return out
}

// MarshalJSON writes the map as a JSON object in insertion order
func (m BalanceMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatInt(entry.MemberID, 10))
		buf.WriteString(`":`)
		value, err := json.Marshal(entry.Balance)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts either an object keyed by member id or an array of
// {memberId, balance}. Entries whose id or value cannot be parsed are dropped;
// decoding never fails.
func (m *BalanceMap) UnmarshalJSON(data []byte) error {
	*m = nil
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil
			}
			key, _ := keyTok.(string)
			memberID, ok := ParseMemberID(key)
			if !ok {
				continue
			}
			var value FlexNumber
			_ = value.UnmarshalJSON(raw)
			if !value.Valid {
				continue
			}
			m.Set(memberID, value.Value)
		}
	case '[':
		for dec.More() {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil
			}
			var entry struct {
				MemberID FlexID     `json:"memberId"`
				Balance  FlexNumber `json:"balance"`
			}
			if err := json.Unmarshal(raw, &entry); err != nil {
				continue
			}
			if !entry.MemberID.Valid || !entry.Balance.Valid {
				continue
			}
			m.Set(entry.MemberID.Value, entry.Balance.Value)
		}
	}
	return nil
}
