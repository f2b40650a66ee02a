// Package contacts merges the candidate sources offered by the mention
// dropdown and adjusts a draft's recipient fields.
package contacts

import (
	"context"
	"log"
	"sort"

	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ComposeHost reads and writes the recipient fields of compose surfaces.
type ComposeHost interface {
	GetComposeRecipients(ctx context.Context, surfaceID string) (types.ComposeDetails, error)
	SetComposeRecipients(ctx context.Context, surfaceID string, details types.ComposeDetails) error
}

// AddressBook searches the user's address books. An empty query lists
// everything.
type AddressBook interface {
	Search(ctx context.Context, query string) ([]types.AddressBookContact, error)
}

// Aggregator answers candidate queries for compose surfaces.
type Aggregator struct {
	Host  ComposeHost
	Books AddressBook
}

// NewAggregator wires an aggregator to its hosts. Either may be nil, which
// disables that source.
func NewAggregator(host ComposeHost, books AddressBook) *Aggregator {
	return &Aggregator{Host: host, Books: books}
}

// Query merges current recipients, address-book entries and custom contacts,
// in that priority order, into at most settings.Limit() candidates. The first
// source to produce an email owns it. Blocked and non-matching entries are
// dropped from every source. Host failures are logged and the source is
// treated as empty.
func (a *Aggregator) Query(ctx context.Context, surfaceID, text string, settings types.Settings) []types.Candidate {
	blocklist := core.CompileBlocklist(settings.Blocklist)
	m := newMerger(text, blocklist)

	if settings.SearchRecipients && a.Host != nil {
		details, err := a.Host.GetComposeRecipients(ctx, surfaceID)
		if err != nil {
			log.Printf("warning: read recipients of %s: %v", surfaceID, err)
		} else {
			for _, field := range [][]types.Recipient{details.To, details.Cc, details.Bcc} {
				for _, r := range field {
					addr, ok := core.ParseRecipient(r)
					if !ok {
						continue
					}
					m.add(addr.Name, addr.Email, true)
				}
			}
		}
	}

	if settings.SearchAddressBooks && a.Books != nil {
		entries, err := a.Books.Search(ctx, text)
		if err != nil {
			log.Printf("warning: search address book for %q: %v", text, err)
		} else {
			for _, entry := range entries {
				name, emails := entryAddresses(entry)
				for _, email := range emails {
					m.add(name, email, false)
				}
			}
		}
	}

	if settings.SearchCustomContacts {
		for _, c := range settings.CustomContacts {
			m.add(c.Name, c.Email, false)
		}
	}

	results := m.results
	sortCandidates(results)
	if limit := settings.Limit(); len(results) > limit {
		results = results[:limit]
	}
	return results
}

func entryAddresses(entry types.AddressBookContact) (string, []string) {
	if entry.VCard != "" {
		card := core.ParseVCard(entry.VCard)
		return card.Name, card.Emails
	}
	return entry.Name, entry.Emails
}

type merger struct {
	query     string
	blocklist core.Blocklist
	seen      map[string]struct{}
	results   []types.Candidate
}

func newMerger(query string, blocklist core.Blocklist) *merger {
	return &merger{query: query, blocklist: blocklist, seen: map[string]struct{}{}}
}

func (m *merger) add(name, email string, recipient bool) {
	if email == "" {
		return
	}
	c := types.Candidate{Name: name, Email: email, IsRecipient: recipient}
	if _, ok := m.seen[c.Key()]; ok {
		return
	}
	if !core.MatchesQuery(name, email, m.query) || m.blocklist.Blocked(name, email) {
		return
	}
	m.seen[c.Key()] = struct{}{}
	m.results = append(m.results, c)
}

// sortCandidates puts recipients first, then orders by display name without
// regard to case.
func sortCandidates(list []types.Candidate) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsRecipient != list[j].IsRecipient {
			return list[i].IsRecipient
		}
		return col.CompareString(list[i].DisplayName(), list[j].DisplayName()) < 0
	})
}
