package assettrack

import (
	"fmt"
	"strings"

	"github.com/etnz/assettrack/date"
)

// DedupPolicy names two services that report the same outbound transfers.
// The Secondary copy is dropped when the Primary one exists.
type DedupPolicy struct {
	Primary   string
	Secondary string
}

// DefaultDedupPolicies reflects custodians known to double report: the pro
// exchange lists withdrawals that the retail account lists too.
var DefaultDedupPolicies = []DedupPolicy{{Primary: "Coinbase", Secondary: "CoinbasePro"}}

func (p DedupPolicy) String() string { return p.Primary + ":" + p.Secondary }

// ParseDedupPolicies parses a comma separated list of Primary:Secondary pairs.
func ParseDedupPolicies(s string) ([]DedupPolicy, error) {
	var policies []DedupPolicy
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		primary, secondary, ok := strings.Cut(pair, ":")
		if !ok || primary == "" || secondary == "" {
			return nil, fmt.Errorf("invalid deduplication policy %q, want Primary:Secondary", pair)
		}
		policies = append(policies, DedupPolicy{Primary: primary, Secondary: secondary})
	}
	return policies, nil
}

// ScrubDuplicates drops outbound transfers of a policy's Secondary service
// when the Primary service reports an outbound transfer of the same amount on
// the same day. Order is preserved.
func ScrubDuplicates(txs []Transaction, policies ...DedupPolicy) []Transaction {
	type key struct {
		service string
		day     date.Date
		amount  string
	}
	outbound := make(map[key]bool)
	for _, tx := range txs {
		if tx.Type == TransferOut {
			outbound[key{tx.Service, date.Of(tx.DateTime), tx.AmountPaid.value.String()}] = true
		}
	}

	scrubbed := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == TransferOut && isDuplicate(tx, policies, func(primary string) bool {
			return outbound[key{primary, date.Of(tx.DateTime), tx.AmountPaid.value.String()}]
		}) {
			continue
		}
		scrubbed = append(scrubbed, tx)
	}
	return scrubbed
}

func isDuplicate(tx Transaction, policies []DedupPolicy, reportedBy func(primary string) bool) bool {
	for _, p := range policies {
		if tx.Service == p.Secondary && reportedBy(p.Primary) {
			return true
		}
	}
	return false
}
