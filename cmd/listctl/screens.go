package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/simp-lee/procurebase/internal/domain"
	"github.com/simp-lee/procurebase/internal/filter"
	"github.com/simp-lee/procurebase/internal/listquery"
)

const (
	screenVendors        = "vendors"
	screenPurchaseOrders = "purchase-orders"
)

// rangeSep separates the two sides of a range flag value, e.g. "2..4.5" or
// "2024-01-01..2024-06-30".
const rangeSep = ".."

func vendorFilters() *filter.Set {
	return filter.MustSet(
		filter.Entry{ID: "status", Definition: filter.NewCheckbox(filter.Meta{
			ModuleName: screenVendors, FilterBy: "status", Label: "Status",
		}, string(domain.VendorActive), string(domain.VendorInactive), string(domain.VendorPending))},
		filter.Entry{ID: "rating", Definition: filter.NewRangeNumeric(filter.Meta{
			ModuleName: screenVendors, FilterBy: "rating", Label: "Rating",
		}, 0, 5)},
		filter.Entry{ID: "onboarded", Definition: filter.NewRangeDate(filter.Meta{
			ModuleName: screenVendors, FilterBy: "onboarded_at", Label: "Onboarded",
		})},
		filter.Entry{ID: "category", Definition: filter.NewInputText(filter.Meta{
			ModuleName: screenVendors, FilterBy: "category", Label: "Category",
		})},
	)
}

func purchaseOrderFilters() *filter.Set {
	return filter.MustSet(
		filter.Entry{ID: "status", Definition: filter.NewCheckbox(filter.Meta{
			ModuleName: screenPurchaseOrders, FilterBy: "status", Label: "Status",
		}, string(domain.PODraft), string(domain.POIssued), string(domain.POReceived), string(domain.POCancelled))},
		filter.Entry{ID: "amount", Definition: filter.NewRangeNumeric(filter.Meta{
			ModuleName: screenPurchaseOrders, FilterBy: "amount", Label: "Amount",
		}, 0, 1_000_000)},
		filter.Entry{ID: "issued", Definition: filter.NewRangeDate(filter.Meta{
			ModuleName: screenPurchaseOrders, FilterBy: "issued_at", Label: "Issued",
		})},
		filter.Entry{ID: "number", Definition: filter.NewInputText(filter.Meta{
			ModuleName: screenPurchaseOrders, FilterBy: "number", Label: "PO number",
		})},
	)
}

// filterFlags collects repeated -filter id=value flags.
type filterFlags []string

func (f *filterFlags) String() string { return strings.Join(*f, " ") }

func (f *filterFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("filter %q: want id=value", v)
	}
	*f = append(*f, v)
	return nil
}

// applyFilterFlag edits the open draft of e according to one id=value flag.
// The value format depends on the filter's control type: "lo..hi" for
// numeric and date ranges, "a,b" for checkboxes, free text otherwise.
func applyFilterFlag(e *filter.Engine, flag string) error {
	id, value, _ := strings.Cut(flag, "=")
	def, ok := e.Draft().Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", filter.ErrUnknownFilter, id)
	}

	switch d := def.(type) {
	case *filter.RangeNumeric:
		lo, hi, err := splitRange(value)
		if err != nil {
			return fmt.Errorf("filter %q: %w", id, err)
		}
		from, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return fmt.Errorf("filter %q: %w", id, err)
		}
		to, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return fmt.Errorf("filter %q: %w", id, err)
		}
		return e.SetRangeNumeric(id, from, to)
	case *filter.RangeDate:
		from, to, err := splitRange(value)
		if err != nil {
			return fmt.Errorf("filter %q: %w", id, err)
		}
		if err := e.SetRangeDate(id, filter.From, from); err != nil {
			return err
		}
		return e.SetRangeDate(id, filter.To, to)
	case *filter.Checkbox:
		want := map[string]bool{}
		for opt := range strings.SplitSeq(value, ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				want[opt] = true
			}
		}
		// Toggle only the options whose selection differs.
		for _, opt := range d.Options {
			if d.Selected[opt] != want[opt] {
				if err := e.ToggleOption(id, opt); err != nil {
					return err
				}
			}
			delete(want, opt)
		}
		if len(want) > 0 {
			return fmt.Errorf("filter %q: unknown option %q", id, slices.Sorted(maps.Keys(want))[0])
		}
		return nil
	case *filter.InputText:
		return e.SetInputText(id, value)
	default:
		return fmt.Errorf("filter %q: unsupported control type %s", id, def.ControlType())
	}
}

func splitRange(v string) (string, string, error) {
	lo, hi, ok := strings.Cut(v, rangeSep)
	if !ok {
		return "", "", fmt.Errorf("range %q: want lo%shi", v, rangeSep)
	}
	return strings.TrimSpace(lo), strings.TrimSpace(hi), nil
}

func printSummary[T any](w io.Writer, st listquery.State[T]) {
	from, to, total, ok := st.Range()
	if !ok {
		fmt.Fprintln(w, "No entries")
		return
	}
	fmt.Fprintf(w, "Showing %d-%d of %d (page %d of %d)\n", from, to, total, st.Page, st.TotalCount)
}

func printVendors(w io.Writer, st listquery.State[domain.Vendor]) {
	printSummary(w, st)
	if len(st.Items) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCATEGORY\tSTATUS\tRATING\tORDERS")
		for _, v := range st.Items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.1f\t%d\n",
				v.ID, v.Name, v.Email, v.Category, v.Status, v.Rating, v.OrderCount)
		}
		_ = tw.Flush()
	}

	var active, pending int64
	if st.ExtraValue("totalActiveVendors", &active) == nil &&
		st.ExtraValue("totalPendingVendors", &pending) == nil {
		fmt.Fprintf(w, "Active vendors: %d, pending vendors: %d\n", active, pending)
	}
}

func printPurchaseOrders(w io.Writer, st listquery.State[domain.PurchaseOrder]) {
	printSummary(w, st)
	if len(st.Items) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNUMBER\tVENDOR\tREQUISITION\tSTATUS\tAMOUNT")
		for _, po := range st.Items {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n",
				po.ID, po.Number, po.VendorID, po.RequisitionID, po.Status, po.Amount.StringFixed(2))
		}
		_ = tw.Flush()
	}

	var total string
	if st.ExtraValue("totalAmount", &total) == nil {
		fmt.Fprintf(w, "Total amount: %s\n", total)
	}
}
