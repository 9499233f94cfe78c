package applications

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// SectionKind names a group of fields captured by the application form.
type SectionKind string

const (
	KindInventorInfo  SectionKind = "inventorInfo"
	KindPatentInfo    SectionKind = "patentInfo"
	KindValuationInfo SectionKind = "valuationInfo"
)

// FormData is the payload captured by the application form: a set of
// sections keyed by kind. Each section is kept as raw JSON, so sections this
// package does not know about survive a round trip with the same content.
// Storage compacts their whitespace and does not escape HTML characters. The
// store never validates it.
type FormData map[SectionKind]json.RawMessage

// SectionPayload is implemented by the typed sections.
type SectionPayload interface {
	Kind() SectionKind
}

type InventorInfo struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
	Country      string `json:"country,omitempty"`
}

func (InventorInfo) Kind() SectionKind { return KindInventorInfo }

type PatentInfo struct {
	Title        string `json:"title,omitempty"`
	PatentNumber string `json:"patentNumber,omitempty"`
	FilingDate   string `json:"filingDate,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Category     string `json:"category,omitempty"`
	Abstract     string `json:"abstract,omitempty"`
}

func (PatentInfo) Kind() SectionKind { return KindPatentInfo }

// ValuationInfo amounts are in Currency units.
type ValuationInfo struct {
	EstimatedValue  decimal.Decimal `json:"estimatedValue"`
	Currency        string          `json:"currency,omitempty"`
	Methodology     string          `json:"methodology,omitempty"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
}

func (ValuationInfo) Kind() SectionKind { return KindValuationInfo }

// Wrap encodes typed sections into a FormData. A later section of the same
// kind replaces an earlier one.
func Wrap(sections ...SectionPayload) (FormData, error) {
	fd := make(FormData, len(sections))
	for _, s := range sections {
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", s.Kind(), err)
		}
		fd[s.Kind()] = raw
	}
	return fd, nil
}

// Section decodes the section of type T. ok is false when the section is
// absent.
func Section[T SectionPayload](fd FormData) (v T, ok bool, err error) {
	raw, ok := fd[v.Kind()]
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, true, fmt.Errorf("decode %s: %w", v.Kind(), err)
	}
	return v, true, nil
}

// Unwrap splits fd into decoded known sections, ordered by kind, and the raw
// sections of unknown kinds.
func Unwrap(fd FormData) (known []SectionPayload, unknown map[SectionKind]json.RawMessage, err error) {
	for kind, raw := range fd {
		var s SectionPayload
		switch kind {
		case KindInventorInfo:
			s, err = decodeAs[InventorInfo](raw)
		case KindPatentInfo:
			s, err = decodeAs[PatentInfo](raw)
		case KindValuationInfo:
			s, err = decodeAs[ValuationInfo](raw)
		default:
			if unknown == nil {
				unknown = make(map[SectionKind]json.RawMessage)
			}
			unknown[kind] = raw
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		known = append(known, s)
	}
	slices.SortFunc(known, func(a, b SectionPayload) int { return cmp.Compare(a.Kind(), b.Kind()) })
	return known, unknown, nil
}

func decodeAs[T SectionPayload](raw json.RawMessage) (SectionPayload, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
