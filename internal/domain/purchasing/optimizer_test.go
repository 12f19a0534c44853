package purchasing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/purchasing"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenario base: 3 ítems, 3 proveedores.
//
//	         item-1   item-2   item-3   total
//	sup-A     100      200      300      600
//	sup-B      90      250      280      620
//	sup-C      95       —       310      405 (2 ítems)
//
// Óptimo: item-1 → B (90), item-2 → A (200), item-3 → B (280) = 570
// Mejor proveedor único (cobertura completa): A con 600 → ahorro 30 (5%).
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func items() []purchasing.ItemRef {
	return []purchasing.ItemRef{
		{RequestItemID: "item-1", Description: "Papel A4", Quantity: d("10")},
		{RequestItemID: "item-2", Description: "Toner", Quantity: d("2")},
		{RequestItemID: "item-3", Description: "Grapas", Quantity: d("5")},
	}
}

func proposal(id, supplier string, totals map[string]string) purchasing.ProposalQuotes {
	p := purchasing.ProposalQuotes{ProposalID: id, SupplierID: supplier, SupplierName: "Proveedor " + supplier}
	for _, itemID := range []string{"item-1", "item-2", "item-3", "item-x"} {
		if v, ok := totals[itemID]; ok {
			p.Quotes = append(p.Quotes, purchasing.Quote{RequestItemID: itemID, TotalPrice: d(v)})
		}
	}
	return p
}

func baseProposals() []purchasing.ProposalQuotes {
	return []purchasing.ProposalQuotes{
		proposal("p-A", "sup-A", map[string]string{"item-1": "100", "item-2": "200", "item-3": "300"}),
		proposal("p-B", "sup-B", map[string]string{"item-1": "90", "item-2": "250", "item-3": "280"}),
		proposal("p-C", "sup-C", map[string]string{"item-1": "95", "item-3": "310"}),
	}
}

func TestAnalyze_MenorPrecioPorItem(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())

	require.Len(t, a.Items, 3)
	expected := map[string]string{"item-1": "sup-B", "item-2": "sup-A", "item-3": "sup-B"}
	for _, ch := range a.Items {
		require.NotNil(t, ch.Best, "ítem %s debe tener ganador", ch.Item.RequestItemID)
		assert.Equal(t, expected[ch.Item.RequestItemID], ch.Best.SupplierID)

		// El precio elegido es el mínimo entre todas las cotizaciones del ítem.
		for _, q := range ch.Quotes {
			assert.True(t, ch.Best.Effective().LessThanOrEqual(q.Effective()))
		}
	}
	assert.True(t, d("570").Equal(a.OptimalTotal), "óptimo = %s", a.OptimalTotal)
	assert.Empty(t, a.UnquotedItems)
}

func TestAnalyze_TotalesPorProveedorYMejorUnico(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())

	require.Len(t, a.SupplierTotals, 3)
	assert.True(t, d("600").Equal(a.SupplierTotals[0].Total))
	assert.True(t, d("620").Equal(a.SupplierTotals[1].Total))
	assert.True(t, d("405").Equal(a.SupplierTotals[2].Total))
	assert.Equal(t, 2, a.SupplierTotals[2].ItemsQuoted)
	assert.False(t, a.SupplierTotals[2].CoversAll)
	assert.Equal(t, 1, a.SupplierTotals[0].ItemsWon)
	assert.Equal(t, 2, a.SupplierTotals[1].ItemsWon)

	// sup-C es más barato en total pero no cubre todos los ítems.
	require.NotNil(t, a.BestSingle)
	assert.Equal(t, "sup-A", a.BestSingle.SupplierID)
	assert.True(t, d("570").Equal(a.ComparableOptimal))
	assert.True(t, d("30").Equal(a.Savings))
	assert.True(t, d("5").Equal(a.SavingsPct), "ahorro %% = %s", a.SavingsPct)
	assert.Equal(t, purchasing.RecommendationSplit, a.Recommendation)
	assert.True(t, a.OptimalTotal.LessThanOrEqual(a.BestSingle.Total))
}

func TestAnalyze_AgrupaPlanPorProveedor(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())

	require.Len(t, a.Allocations, 2)
	assert.Equal(t, "sup-A", a.Allocations[0].SupplierID)
	assert.True(t, d("200").Equal(a.Allocations[0].Subtotal))
	assert.Equal(t, "sup-B", a.Allocations[1].SupplierID)
	assert.Len(t, a.Allocations[1].Items, 2)
	assert.True(t, d("370").Equal(a.Allocations[1].Subtotal))
	assert.Equal(t, "p-B", a.Allocations[1].ProposalID)
}

func TestAnalyze_EmpateGanaPrimeraAparicion(t *testing.T) {
	props := []purchasing.ProposalQuotes{
		proposal("p-A", "sup-A", map[string]string{"item-1": "50"}),
		proposal("p-B", "sup-B", map[string]string{"item-1": "50"}),
	}
	a := purchasing.Analyze(items()[:1], props)

	require.NotNil(t, a.Items[0].Best)
	assert.Equal(t, "sup-A", a.Items[0].Best.SupplierID)
	assert.Equal(t, "sup-A", a.BestSingle.SupplierID)
	assert.True(t, a.Savings.IsZero())
	assert.Equal(t, purchasing.RecommendationSingle, a.Recommendation)
}

func TestAnalyze_UnSoloProveedorMasBaratoEnTodo(t *testing.T) {
	props := []purchasing.ProposalQuotes{
		proposal("p-A", "sup-A", map[string]string{"item-1": "10", "item-2": "20", "item-3": "30"}),
		proposal("p-B", "sup-B", map[string]string{"item-1": "11", "item-2": "21", "item-3": "31"}),
	}
	a := purchasing.Analyze(items(), props)

	assert.Equal(t, purchasing.RecommendationSingle, a.Recommendation)
	assert.Len(t, a.Allocations, 1)
	assert.True(t, a.Savings.IsZero())
	assert.True(t, a.OptimalTotal.Equal(a.BestSingle.Total))
}

func TestAnalyze_CalculaTotalDesdePrecioUnitario(t *testing.T) {
	props := []purchasing.ProposalQuotes{{
		ProposalID: "p-A", SupplierID: "sup-A",
		Quotes: []purchasing.Quote{{RequestItemID: "item-1", UnitPrice: d("2.5"), Quantity: d("10")}},
	}}
	a := purchasing.Analyze(items()[:1], props)

	require.NotNil(t, a.Items[0].Best)
	assert.True(t, d("25").Equal(a.OptimalTotal))
}

func TestAnalyze_DescartaPreciosNoPositivosEItemsAjenos(t *testing.T) {
	props := []purchasing.ProposalQuotes{
		proposal("p-A", "sup-A", map[string]string{"item-1": "0", "item-2": "-5", "item-x": "1"}),
		proposal("p-B", "sup-B", map[string]string{"item-1": "40"}),
	}
	a := purchasing.Analyze(items(), props)

	assert.Equal(t, "sup-B", a.Items[0].Best.SupplierID)
	assert.Nil(t, a.Items[1].Best)
	assert.Len(t, a.UnquotedItems, 2)
	assert.Equal(t, 0, a.SupplierTotals[0].ItemsQuoted)
	assert.Equal(t, "sup-B", a.BestSingle.SupplierID)
}

func TestAnalyze_SinCotizaciones(t *testing.T) {
	a := purchasing.Analyze(items(), nil)

	assert.Equal(t, purchasing.RecommendationNone, a.Recommendation)
	assert.Nil(t, a.BestSingle)
	assert.True(t, a.OptimalTotal.IsZero())
	assert.Len(t, a.UnquotedItems, 3)
	assert.Len(t, a.Items, 3)
}

func TestAnalyze_UltimaPropuestaDelProveedorReemplaza(t *testing.T) {
	props := []purchasing.ProposalQuotes{
		proposal("p-A1", "sup-A", map[string]string{"item-1": "100"}),
		proposal("p-B", "sup-B", map[string]string{"item-1": "80"}),
		proposal("p-A2", "sup-A", map[string]string{"item-1": "70"}),
	}
	a := purchasing.Analyze(items()[:1], props)

	require.Len(t, a.SupplierTotals, 2)
	assert.Equal(t, "sup-A", a.SupplierTotals[0].SupplierID, "el orden es el de primera aparición")
	assert.Equal(t, "p-A2", a.Items[0].Best.ProposalID)
	assert.True(t, d("70").Equal(a.OptimalTotal))
}

func TestAnalyze_DivideCuandoNingunoCubreTodo(t *testing.T) {
	props := []purchasing.ProposalQuotes{
		proposal("p-A", "sup-A", map[string]string{"item-1": "10"}),
		proposal("p-B", "sup-B", map[string]string{"item-2": "10"}),
	}
	a := purchasing.Analyze(items()[:2], props)

	assert.True(t, a.Savings.IsZero())
	assert.False(t, a.BestSingle.CoversAll)
	assert.Equal(t, purchasing.RecommendationSplit, a.Recommendation)
}

func TestAnalyze_Determinista(t *testing.T) {
	a1 := purchasing.Analyze(items(), baseProposals())
	a2 := purchasing.Analyze(items(), baseProposals())
	assert.Equal(t, a1, a2)
}

// ── Selección manual ─────────────────────────────────────────────────────────

func TestApplySelection_SinCambiosEsElOptimo(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())
	res, err := purchasing.ApplySelection(a, nil)
	require.NoError(t, err)

	assert.True(t, a.OptimalTotal.Equal(res.Total))
	assert.True(t, res.ExtraCost.IsZero())
	assert.True(t, a.Savings.Equal(res.SavingsVsSingle))
	assert.Equal(t, 0, res.Overrides)
	assert.Len(t, res.Allocations, len(a.Allocations))
}

func TestApplySelection_ReasignaItem(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())
	res, err := purchasing.ApplySelection(a, purchasing.Selection{"item-1": "sup-C"})
	require.NoError(t, err)

	assert.True(t, d("575").Equal(res.Total), "570 - 90 + 95")
	assert.True(t, d("5").Equal(res.ExtraCost))
	assert.Equal(t, 1, res.Overrides)
	assert.True(t, res.Items[0].Overridden)
	assert.True(t, d("5").Equal(res.Items[0].Difference))
	assert.True(t, d("25").Equal(res.SavingsVsSingle))

	require.Len(t, res.Allocations, 3)
	assert.Equal(t, "sup-C", res.Allocations[2].SupplierID)
	total := decimal.Zero
	for _, al := range res.Allocations {
		total = total.Add(al.Subtotal)
	}
	assert.True(t, res.Total.Equal(total), "la suma de las asignaciones es el total")
}

func TestApplySelection_ProveedorQueNoCotizo(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())
	_, err := purchasing.ApplySelection(a, purchasing.Selection{"item-2": "sup-C"})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestApplySelection_ItemDesconocido(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())
	_, err := purchasing.ApplySelection(a, purchasing.Selection{"item-99": "sup-A"})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestApplySelection_NuncaMenorQueElOptimo(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())
	selections := []purchasing.Selection{
		{"item-1": "sup-A", "item-2": "sup-B", "item-3": "sup-C"},
		{"item-1": "sup-C", "item-3": "sup-A"},
		{"item-2": "sup-B"},
	}
	for _, sel := range selections {
		res, err := purchasing.ApplySelection(a, sel)
		require.NoError(t, err)
		assert.True(t, res.Total.GreaterThanOrEqual(a.OptimalTotal))
		assert.False(t, res.ExtraCost.IsNegative())
	}
}

func TestSingleSupplierSelection(t *testing.T) {
	a := purchasing.Analyze(items(), baseProposals())

	sel, err := purchasing.SingleSupplierSelection(a, "sup-A")
	require.NoError(t, err)
	assert.Len(t, sel, 3)

	res, err := purchasing.ApplySelection(a, sel)
	require.NoError(t, err)
	assert.True(t, d("600").Equal(res.Total))
	require.Len(t, res.Allocations, 1)
	assert.True(t, res.SavingsVsSingle.IsZero())

	sel, err = purchasing.SingleSupplierSelection(a, "sup-C")
	require.NoError(t, err)
	assert.Len(t, sel, 2, "sup-C solo cotizó dos ítems")

	_, err = purchasing.SingleSupplierSelection(a, "sup-Z")
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}
