package core

import (
	"regexp"
	"strings"
)

var (
	vcardLineRe  = regexp.MustCompile(`\r?\n`)
	vcardBeginRe = regexp.MustCompile(`(?m)^BEGIN:VCARD\r?$`)
)

// VCard is the subset of a vCard used for mention candidates.
type VCard struct {
	Name   string
	Emails []string
}

// ParseVCard extracts the FN name and every EMAIL value.
func ParseVCard(card string) VCard {
	result := VCard{Emails: []string{}}
	if card == "" {
		return result
	}
	for _, line := range vcardLineRe.Split(card, -1) {
		if strings.HasPrefix(line, "FN:") {
			result.Name = strings.TrimSpace(line[3:])
		}
		if strings.HasPrefix(line, "EMAIL") {
			idx := strings.Index(line, ":")
			if idx == -1 {
				continue
			}
			email := strings.TrimSpace(line[idx+1:])
			if email != "" {
				result.Emails = append(result.Emails, email)
			}
		}
	}
	return result
}

// SplitVCards splits a .vcf stream into individual cards.
func SplitVCards(data string) []string {
	locs := vcardBeginRe.FindAllStringIndex(data, -1)
	cards := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(data)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		card := strings.TrimSpace(data[loc[0]:end])
		if card != "" {
			cards = append(cards, card)
		}
	}
	return cards
}

// BuildVCard renders a minimal vCard 4.0 for a name and addresses.
func BuildVCard(name string, emails []string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\r\nVERSION:4.0\r\n")
	if name != "" {
		b.WriteString("FN:" + name + "\r\n")
	}
	for _, email := range emails {
		b.WriteString("EMAIL:" + email + "\r\n")
	}
	b.WriteString("END:VCARD")
	return b.String()
}
