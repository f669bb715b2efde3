// Package backup covers snapshots, restores, import reconciliation and the
// backup schedule.
package backup

import (
	"billingpro/internal/xid"
)

// Kind selects the secondary match key used when incoming records carry no
// id that matches an existing one.
type Kind string

const (
	KindProducts  Kind = "products"
	KindCustomers Kind = "customers"
	KindInvoices  Kind = "invoices"
	KindPayments  Kind = "payments"
	KindGeneric   Kind = ""
)

func (k Kind) secondaryKey() string {
	switch k {
	case KindProducts:
		return "code"
	case KindCustomers:
		return "phone"
	default:
		return ""
	}
}

func (k Kind) idPrefix() string {
	switch k {
	case KindProducts:
		return "prd"
	case KindCustomers:
		return "cust"
	case KindInvoices:
		return "inv"
	case KindPayments:
		return "pay"
	default:
		return "rec"
	}
}

// Merge reconciles incoming records into existing ones. A record matches by
// id first, then by the kind's secondary key (product code, customer phone).
// Matched records take the incoming fields but keep the existing id, so an
// imported customer found by phone does not break invoice references. Fields
// absent from the incoming record are preserved. Unmatched records are
// appended, receiving a fresh id when they have none. Merging the same input
// twice yields the same result as merging it once.
func Merge(existing, incoming []map[string]any, kind Kind) []map[string]any {
	out := make([]map[string]any, len(existing))
	byID := make(map[string]int, len(existing))
	bySecondary := make(map[string]int, len(existing))
	secondary := kind.secondaryKey()

	for i, rec := range existing {
		out[i] = cloneRecord(rec)
		if id := stringField(rec, "id"); id != "" {
			byID[id] = i
		}
		if secondary != "" {
			if v := stringField(rec, secondary); v != "" {
				bySecondary[v] = i
			}
		}
	}

	for _, rec := range incoming {
		idx := -1
		if id := stringField(rec, "id"); id != "" {
			if i, ok := byID[id]; ok {
				idx = i
			}
		}
		if idx < 0 && secondary != "" {
			if v := stringField(rec, secondary); v != "" {
				if i, ok := bySecondary[v]; ok {
					idx = i
				}
			}
		}

		if idx >= 0 {
			keepID := stringField(out[idx], "id")
			for k, v := range rec {
				out[idx][k] = v
			}
			if keepID != "" {
				out[idx]["id"] = keepID
			}
			continue
		}

		added := cloneRecord(rec)
		if stringField(added, "id") == "" {
			added["id"] = xid.New(kind.idPrefix())
		}
		out = append(out, added)
		byID[stringField(added, "id")] = len(out) - 1
		if secondary != "" {
			if v := stringField(added, secondary); v != "" {
				bySecondary[v] = len(out) - 1
			}
		}
	}
	return out
}

func cloneRecord(rec map[string]any) map[string]any {
	c := make(map[string]any, len(rec))
	for k, v := range rec {
		c[k] = v
	}
	return c
}

func stringField(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}
