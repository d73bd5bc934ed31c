package aips

import (
	"strings"

	"github.com/shanehull/aipsscraper/internal/types"
)

const (
	elemBundle        = "MedicinalDocumentsBundle"
	elemDate          = "Date"
	elemRegulatedAuth = "RegulatedAuthorization"
	elemIdentifier    = "Identifier"

	identifierLength = 5
)

// parserState holds the context flags of the extraction loop.
//
// Flags are plain booleans cleared on the matching close tag, not depth
// counters: an element nested inside an element of the same name ends the
// context at the inner close. The AIPS vocabulary never nests these four
// elements in themselves.
type parserState struct {
	inBundle        bool
	inDate          bool
	inRegulatedAuth bool
	inIdentifier    bool

	currentDate string
}

func (s *parserState) open(local string) {
	switch {
	case local == elemBundle:
		s.inBundle = true
		s.currentDate = ""
	case local == elemDate && s.inBundle:
		s.inDate = true
	case local == elemRegulatedAuth && s.inBundle:
		s.inRegulatedAuth = true
	case local == elemIdentifier && s.inRegulatedAuth:
		s.inIdentifier = true
	}
}

func (s *parserState) close(local string) {
	switch local {
	case elemBundle:
		s.inBundle = false
	case elemDate:
		s.inDate = false
	case elemRegulatedAuth:
		s.inRegulatedAuth = false
	case elemIdentifier:
		s.inIdentifier = false
	}
}

// text consumes a trimmed, non-empty text node and reports whether it
// produced a record.
func (s *parserState) text(t string) (types.Record, bool) {
	if s.inDate {
		s.currentDate, _, _ = strings.Cut(t, "T")
	}

	if !s.inIdentifier {
		return types.Record{}, false
	}

	id := strings.TrimSpace(t)
	if !isIdentifier(id) {
		return types.Record{}, false
	}
	return types.Record{Identifier: id, Date: s.currentDate}, true
}

func isIdentifier(s string) bool {
	if len(s) != identifierLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
