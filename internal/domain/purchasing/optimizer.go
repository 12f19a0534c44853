// Package purchasing contiene el análisis comparativo de propuestas (servicio de dominio):
// menor precio por ítem, plan de compra dividido entre proveedores, comparación contra
// la compra a un solo proveedor y la selección manual que se aparta del óptimo.
//
// No depende de persistencia: recibe ítems y cotizaciones ya cargados y es determinista.
package purchasing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/domain"
)

// Recomendaciones del análisis.
const (
	RecommendationSingle = "SINGLE" // comprar todo a un proveedor
	RecommendationSplit  = "SPLIT"  // dividir la compra entre proveedores
	RecommendationNone   = "NONE"   // ningún ítem cotizado
)

var hundred = decimal.NewFromInt(100)

// ItemRef ítem solicitado, en el orden de la solicitud.
type ItemRef struct {
	RequestItemID string
	Description   string
	Quantity      decimal.Decimal
}

// Quote precio de un proveedor para un ítem.
type Quote struct {
	ProposalID     string
	ProposalItemID string
	SupplierID     string
	SupplierName   string
	RequestItemID  string
	UnitPrice      decimal.Decimal
	Quantity       decimal.Decimal
	TotalPrice     decimal.Decimal
}

// Effective precio total de la línea: TotalPrice o UnitPrice × Quantity.
func (q Quote) Effective() decimal.Decimal {
	if !q.TotalPrice.IsZero() {
		return q.TotalPrice
	}
	return q.UnitPrice.Mul(q.Quantity)
}

// ProposalQuotes cotizaciones de una propuesta, en el orden en que se recibieron.
type ProposalQuotes struct {
	ProposalID   string
	SupplierID   string
	SupplierName string
	Quotes       []Quote
}

// ItemChoice resultado por ítem. Best es nil si nadie lo cotizó.
type ItemChoice struct {
	Item   ItemRef
	Best   *Quote
	Quotes []Quote
}

// SupplierTotal compra completa a un solo proveedor (solo los ítems que cotizó).
type SupplierTotal struct {
	SupplierID   string
	SupplierName string
	ProposalID   string
	Total        decimal.Decimal
	ItemsQuoted  int
	ItemsWon     int
	CoversAll    bool // cotizó todos los ítems que recibieron alguna cotización
}

// Allocation ítems asignados a un proveedor dentro de un plan de compra.
type Allocation struct {
	SupplierID   string
	SupplierName string
	ProposalID   string
	Items        []Quote
	Subtotal     decimal.Decimal
}

// Analysis resultado del análisis optimizado de una solicitud.
type Analysis struct {
	Items             []ItemChoice
	UnquotedItems     []ItemRef
	OptimalTotal      decimal.Decimal
	SupplierTotals    []SupplierTotal
	BestSingle        *SupplierTotal
	ComparableOptimal decimal.Decimal // óptimo restringido a los ítems de BestSingle
	Savings           decimal.Decimal
	SavingsPct        decimal.Decimal
	Allocations       []Allocation
	Recommendation    string
}

// Analyze calcula, por ítem, el menor precio total entre todas las propuestas
// (empate: la primera en aparecer), suma esos mínimos, agrupa el plan por proveedor
// y lo compara con la mejor compra a un solo proveedor.
//
// Si un proveedor tiene varias propuestas, vale la última de la lista.
// Cotizaciones con total <= 0 o de ítems que no están en la solicitud se descartan.
func Analyze(items []ItemRef, proposals []ProposalQuotes) Analysis {
	props := latestPerSupplier(proposals)

	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.RequestItemID] = true
	}

	byItem := make(map[string][]Quote, len(items))
	quotedBy := make([]map[string]Quote, len(props))
	for i, p := range props {
		quotedBy[i] = make(map[string]Quote, len(p.Quotes))
		for _, q := range p.Quotes {
			if !known[q.RequestItemID] || !q.Effective().IsPositive() {
				continue
			}
			if _, dup := quotedBy[i][q.RequestItemID]; dup {
				continue
			}
			q.ProposalID = p.ProposalID
			q.SupplierID = p.SupplierID
			q.SupplierName = p.SupplierName
			quotedBy[i][q.RequestItemID] = q
			byItem[q.RequestItemID] = append(byItem[q.RequestItemID], q)
		}
	}

	a := Analysis{
		Items:             make([]ItemChoice, 0, len(items)),
		OptimalTotal:      decimal.Zero,
		ComparableOptimal: decimal.Zero,
		Savings:           decimal.Zero,
		SavingsPct:        decimal.Zero,
	}
	won := make(map[string][]Quote)
	quotedItems := 0
	for _, it := range items {
		quotes := byItem[it.RequestItemID]
		choice := ItemChoice{Item: it, Quotes: quotes}
		if len(quotes) == 0 {
			a.UnquotedItems = append(a.UnquotedItems, it)
			a.Items = append(a.Items, choice)
			continue
		}
		best := quotes[0]
		for _, q := range quotes[1:] {
			if q.Effective().LessThan(best.Effective()) {
				best = q
			}
		}
		choice.Best = &best
		a.Items = append(a.Items, choice)
		a.OptimalTotal = a.OptimalTotal.Add(best.Effective())
		won[best.SupplierID] = append(won[best.SupplierID], best)
		quotedItems++
	}

	for i, p := range props {
		st := SupplierTotal{
			SupplierID:   p.SupplierID,
			SupplierName: p.SupplierName,
			ProposalID:   p.ProposalID,
			Total:        decimal.Zero,
			ItemsQuoted:  len(quotedBy[i]),
			ItemsWon:     len(won[p.SupplierID]),
		}
		for _, q := range quotedBy[i] {
			st.Total = st.Total.Add(q.Effective())
		}
		st.CoversAll = quotedItems > 0 && st.ItemsQuoted == quotedItems
		a.SupplierTotals = append(a.SupplierTotals, st)

		if w := won[p.SupplierID]; len(w) > 0 {
			a.Allocations = append(a.Allocations, newAllocation(p, w))
		}
	}

	if quotedItems == 0 {
		a.Recommendation = RecommendationNone
		return a
	}

	a.BestSingle = bestSingle(a.SupplierTotals)
	if a.BestSingle != nil {
		var idx int
		for i, p := range props {
			if p.SupplierID == a.BestSingle.SupplierID {
				idx = i
				break
			}
		}
		for _, ch := range a.Items {
			if ch.Best == nil {
				continue
			}
			if _, ok := quotedBy[idx][ch.Item.RequestItemID]; ok {
				a.ComparableOptimal = a.ComparableOptimal.Add(ch.Best.Effective())
			}
		}
		a.Savings = a.BestSingle.Total.Sub(a.ComparableOptimal)
		if a.BestSingle.Total.IsPositive() {
			a.SavingsPct = a.Savings.Div(a.BestSingle.Total).Mul(hundred).Round(2)
		}
	}

	a.Recommendation = RecommendationSingle
	if len(a.Allocations) > 1 && (a.Savings.IsPositive() || (a.BestSingle != nil && !a.BestSingle.CoversAll)) {
		a.Recommendation = RecommendationSplit
	}
	return a
}

// latestPerSupplier deja una propuesta por proveedor (la última), conservando el orden
// de primera aparición del proveedor.
func latestPerSupplier(proposals []ProposalQuotes) []ProposalQuotes {
	order := make([]string, 0, len(proposals))
	latest := make(map[string]ProposalQuotes, len(proposals))
	for _, p := range proposals {
		if _, seen := latest[p.SupplierID]; !seen {
			order = append(order, p.SupplierID)
		}
		latest[p.SupplierID] = p
	}
	out := make([]ProposalQuotes, 0, len(order))
	for _, s := range order {
		out = append(out, latest[s])
	}
	return out
}

// bestSingle elige, entre los proveedores con mayor cobertura, el de menor total.
func bestSingle(totals []SupplierTotal) *SupplierTotal {
	maxCoverage := 0
	for _, t := range totals {
		if t.ItemsQuoted > maxCoverage {
			maxCoverage = t.ItemsQuoted
		}
	}
	if maxCoverage == 0 {
		return nil
	}
	var best *SupplierTotal
	for i := range totals {
		t := totals[i]
		if t.ItemsQuoted != maxCoverage {
			continue
		}
		if best == nil || t.Total.LessThan(best.Total) {
			cp := t
			best = &cp
		}
	}
	return best
}

func newAllocation(p ProposalQuotes, quotes []Quote) Allocation {
	al := Allocation{
		SupplierID:   p.SupplierID,
		SupplierName: p.SupplierName,
		ProposalID:   p.ProposalID,
		Items:        quotes,
		Subtotal:     decimal.Zero,
	}
	for _, q := range quotes {
		al.Subtotal = al.Subtotal.Add(q.Effective())
	}
	return al
}

// Quote devuelve la cotización de un proveedor para un ítem.
func (a Analysis) Quote(requestItemID, supplierID string) (Quote, bool) {
	for _, ch := range a.Items {
		if ch.Item.RequestItemID != requestItemID {
			continue
		}
		for _, q := range ch.Quotes {
			if q.SupplierID == supplierID {
				return q, true
			}
		}
		return Quote{}, false
	}
	return Quote{}, false
}

// Selection asignación manual: RequestItemID → SupplierID.
type Selection map[string]string

// SelectedItem ítem dentro de una selección.
type SelectedItem struct {
	Item       ItemRef
	Chosen     Quote
	Optimal    Quote
	Overridden bool
	Difference decimal.Decimal // Chosen - Optimal
}

// SelectionResult plan de compra resultante de una selección manual.
type SelectionResult struct {
	Items           []SelectedItem
	Total           decimal.Decimal
	Allocations     []Allocation
	ExtraCost       decimal.Decimal // Total - OptimalTotal
	SavingsVsSingle decimal.Decimal
	Overrides       int
}

// ApplySelection recalcula el plan con la selección del usuario. Los ítems que no
// figuran en la selección conservan la opción óptima. Elegir un proveedor que no
// cotizó el ítem, o un ítem desconocido, devuelve domain.ErrInvalidSelection.
func ApplySelection(a Analysis, sel Selection) (SelectionResult, error) {
	index := make(map[string]int, len(a.Items))
	for i, ch := range a.Items {
		index[ch.Item.RequestItemID] = i
	}
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, itemID := range keys {
		i, ok := index[itemID]
		if !ok {
			return SelectionResult{}, fmt.Errorf("%w: ítem %s no pertenece a la solicitud", domain.ErrInvalidSelection, itemID)
		}
		if _, ok := a.Quote(itemID, sel[itemID]); !ok || a.Items[i].Best == nil {
			return SelectionResult{}, fmt.Errorf("%w: proveedor %s no cotizó el ítem %s", domain.ErrInvalidSelection, sel[itemID], itemID)
		}
	}

	res := SelectionResult{
		Total:           decimal.Zero,
		ExtraCost:       decimal.Zero,
		SavingsVsSingle: decimal.Zero,
	}
	won := make(map[string][]Quote)
	singleComparable := decimal.Zero
	for _, ch := range a.Items {
		if ch.Best == nil {
			continue
		}
		chosen := *ch.Best
		if supplierID, ok := sel[ch.Item.RequestItemID]; ok {
			chosen, _ = a.Quote(ch.Item.RequestItemID, supplierID)
		}
		overridden := chosen.SupplierID != ch.Best.SupplierID
		if overridden {
			res.Overrides++
		}
		res.Items = append(res.Items, SelectedItem{
			Item:       ch.Item,
			Chosen:     chosen,
			Optimal:    *ch.Best,
			Overridden: overridden,
			Difference: chosen.Effective().Sub(ch.Best.Effective()),
		})
		res.Total = res.Total.Add(chosen.Effective())
		won[chosen.SupplierID] = append(won[chosen.SupplierID], chosen)
		if a.BestSingle != nil {
			if _, ok := a.Quote(ch.Item.RequestItemID, a.BestSingle.SupplierID); ok {
				singleComparable = singleComparable.Add(chosen.Effective())
			}
		}
	}

	for _, st := range a.SupplierTotals {
		if w := won[st.SupplierID]; len(w) > 0 {
			res.Allocations = append(res.Allocations, newAllocation(ProposalQuotes{
				ProposalID:   st.ProposalID,
				SupplierID:   st.SupplierID,
				SupplierName: st.SupplierName,
			}, w))
		}
	}
	res.ExtraCost = res.Total.Sub(a.OptimalTotal)
	if a.BestSingle != nil {
		res.SavingsVsSingle = a.BestSingle.Total.Sub(singleComparable)
	}
	return res, nil
}

// SingleSupplierSelection selección que compra al proveedor indicado todo lo que cotizó.
// Los ítems que ese proveedor no cotizó quedan con la opción óptima.
func SingleSupplierSelection(a Analysis, supplierID string) (Selection, error) {
	found := false
	for _, st := range a.SupplierTotals {
		if st.SupplierID == supplierID && st.ItemsQuoted > 0 {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: proveedor %s sin cotizaciones", domain.ErrInvalidSelection, supplierID)
	}
	sel := make(Selection)
	for _, ch := range a.Items {
		if _, ok := a.Quote(ch.Item.RequestItemID, supplierID); ok {
			sel[ch.Item.RequestItemID] = supplierID
		}
	}
	return sel, nil
}
