package settlement

import "github.com/fkhayef/campuspay/internal/ledger"

// PartyKind tags one side of a transfer
type PartyKind int

const (
	// PartyAccount is a real account identified by id
	PartyAccount PartyKind = iota
	// PartySource is money entering the system (upload); it is never debited
	PartySource
	// PartySink is money leaving the system (withdraw); it is never credited
	PartySink
)

// Party is one side of a transfer: a real account, or a system source/sink.
// The ledger sentinel strings exist only at the persistence boundary; code
// always works with the tagged value.
type Party struct {
	kind      PartyKind
	accountID string
}

// AccountParty returns a party backed by a real account
func AccountParty(id string) Party {
	return Party{kind: PartyAccount, accountID: id}
}

// SystemSource returns the party representing money entering the system
func SystemSource() Party {
	return Party{kind: PartySource}
}

// SystemSink returns the party representing money leaving the system
func SystemSink() Party {
	return Party{kind: PartySink}
}

// Kind returns the party's tag
func (p Party) Kind() PartyKind {
	return p.kind
}

// IsAccount reports whether the party is a real account
func (p Party) IsAccount() bool {
	return p.kind == PartyAccount
}

// AccountID returns the account id; empty for system parties
func (p Party) AccountID() string {
	return p.accountID
}

// LedgerID returns the identifier written into ledger entries
func (p Party) LedgerID() string {
	switch p.kind {
	case PartySource:
		return ledger.SentinelUpload
	case PartySink:
		return ledger.SentinelWithdraw
	default:
		return p.accountID
	}
}
