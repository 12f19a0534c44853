package purchasing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/application/purchasing"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/Compras-api/internal/domain/purchasing"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
	"github.com/jhoicas/Compras-api/internal/testutil/memstore"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	ctx       context.Context
	store     *memstore.Store
	mailer    *memstore.Mailer
	company   string
	suppliers map[string]string // nombre → id
	quotes    *purchasing.QuotationUseCase
	proposals *purchasing.ProposalUseCase
	analysis  *purchasing.AnalysisUseCase
	orders    *purchasing.PurchaseOrderUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	mailer := &memstore.Mailer{FailFor: map[string]error{}}
	log := zerolog.Nop()

	companyID := uuid.New().String()
	require.NoError(t, store.Companies().Create(ctx, &entity.Company{
		ID: companyID, Name: "Acme", TaxID: "900123456", Email: "compras@acme.test", Status: "active",
	}))
	f := &fixture{ctx: ctx, store: store, mailer: mailer, company: companyID, suppliers: map[string]string{}}
	for _, name := range []string{"A", "B", "C"} {
		id := uuid.New().String()
		require.NoError(t, store.Suppliers().Create(ctx, &entity.Supplier{
			ID: id, CompanyID: companyID, Name: "Proveedor " + name, TaxID: "NIT-" + name,
			Email: "ventas" + name + "@prov.test", Status: "active",
		}))
		f.suppliers[name] = id
	}

	f.quotes = purchasing.NewQuotationUseCase(purchasing.QuotationDeps{
		Requests: store.Requests(), Suppliers: store.Suppliers(), Products: store.Products(),
		Companies: store.Companies(), Sender: mailer, Log: log,
	})
	f.proposals = purchasing.NewProposalUseCase(store.Requests(), store.Proposals(), store.Suppliers(), store.Tx(), nil, log)
	f.analysis = purchasing.NewAnalysisUseCase(store.Requests(), store.Proposals(), store.Suppliers(), store.Companies(), memstore.Documents{}, nil, log)
	f.orders = purchasing.NewPurchaseOrderUseCase(purchasing.PurchaseOrderDeps{
		Analysis: f.analysis, Requests: store.Requests(), Orders: store.Orders(), Suppliers: store.Suppliers(),
		Companies: store.Companies(), Tx: store.Tx(), PDF: memstore.Documents{}, XML: memstore.Documents{},
		Sender: mailer, Log: log,
	})
	return f
}

// createRequest crea una solicitud con Papel A4 (10), Toner (2) y Grapas (5) invitando a A, B y C.
func (f *fixture) createRequest(t *testing.T) *dto.QuotationResponse {
	t.Helper()
	resp, err := f.quotes.Create(f.ctx, f.company, "user-1", dto.CreateQuotationRequest{
		Title: "Papelería",
		Items: []dto.RequestItemInput{
			{Description: "Papel A4", Quantity: d("10"), UnitMeasure: "RESMA"},
			{Description: "Toner", Quantity: d("2")},
			{Description: "Grapas", Quantity: d("5")},
		},
		SupplierIDs: []string{f.suppliers["A"], f.suppliers["B"], f.suppliers["C"]},
	})
	require.NoError(t, err)
	return resp
}

// sentRequestWithProposals deja la solicitud en IN_ANALYSIS con el escenario base:
// A cotiza 100/200/300, B 90/250/280, C 95/—/310.
func (f *fixture) sentRequestWithProposals(t *testing.T) *dto.QuotationResponse {
	t.Helper()
	req := f.createRequest(t)
	_, err := f.quotes.Send(f.ctx, f.company, req.ID)
	require.NoError(t, err)

	prices := map[string][]string{
		"A": {"100", "200", "300"},
		"B": {"90", "250", "280"},
		"C": {"95", "", "310"},
	}
	for _, name := range []string{"A", "B", "C"} {
		var lines []dto.ProposalItemInput
		for i, p := range prices[name] {
			if p == "" {
				continue
			}
			lines = append(lines, dto.ProposalItemInput{RequestItemID: req.Items[i].ID, TotalPrice: d(p)})
		}
		_, err := f.proposals.Create(f.ctx, f.company, req.ID, dto.CreateProposalRequest{
			SupplierID: f.suppliers[name], DeliveryDays: 5, Items: lines,
		})
		require.NoError(t, err)
	}
	return req
}

func TestQuotation_CreaBorradorConNumeroCorrelativo(t *testing.T) {
	f := newFixture(t)

	first := f.createRequest(t)
	second := f.createRequest(t)

	assert.Equal(t, entity.RequestStatusDraft, first.Status)
	assert.Equal(t, "SC-000001", first.Number)
	assert.Equal(t, "SC-000002", second.Number)
	require.Len(t, first.Items, 3)
	assert.Equal(t, "RESMA", first.Items[0].UnitMeasure)
	assert.Len(t, first.Suppliers, 3)
}

func TestQuotation_RechazaCantidadNoPositiva(t *testing.T) {
	f := newFixture(t)

	_, err := f.quotes.Create(f.ctx, f.company, "user-1", dto.CreateQuotationRequest{
		Title: "X",
		Items: []dto.RequestItemInput{{Description: "Papel", Quantity: d("0")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuotation_SendRegistraFallosPorProveedor(t *testing.T) {
	f := newFixture(t)
	f.mailer.FailFor["ventasB@prov.test"] = errors.New("buzón lleno")
	req := f.createRequest(t)

	resp, err := f.quotes.Send(f.ctx, f.company, req.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Sent)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, entity.RequestStatusSent, resp.Request.Status)
	require.Len(t, f.mailer.Sent, 2)
	assert.Contains(t, f.mailer.Sent[0].Subject, "SC-000001")

	// Reenviar solo reintenta el proveedor que falló.
	delete(f.mailer.FailFor, "ventasB@prov.test")
	resp, err = f.quotes.Send(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Sent)
	assert.Equal(t, 0, resp.Failed)
	assert.Len(t, f.mailer.Sent, 3)
}

func TestQuotation_SinEnviosExitososSigueEnBorrador(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"A", "B", "C"} {
		f.mailer.FailFor["ventas"+name+"@prov.test"] = errors.New("smtp caído")
	}
	req := f.createRequest(t)

	resp, err := f.quotes.Send(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Failed)
	assert.Equal(t, entity.RequestStatusDraft, resp.Request.Status)
}

func TestQuotation_SinSMTP(t *testing.T) {
	f := newFixture(t)
	uc := purchasing.NewQuotationUseCase(purchasing.QuotationDeps{
		Requests: f.store.Requests(), Suppliers: f.store.Suppliers(), Products: f.store.Products(),
		Companies: f.store.Companies(), Log: zerolog.Nop(),
	})
	req := f.createRequest(t)

	_, err := uc.Send(f.ctx, f.company, req.ID)
	assert.ErrorIs(t, err, domain.ErrMailUnavailable)
}

func TestQuotation_OtraEmpresaNoVeLaSolicitud(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	_, err := f.quotes.Get(f.ctx, uuid.New().String(), req.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuotation_SoloBorradoresSeEditan(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)
	_, err := f.quotes.Send(f.ctx, f.company, req.ID)
	require.NoError(t, err)

	title := "Otro"
	_, err = f.quotes.Update(f.ctx, f.company, req.ID, dto.UpdateQuotationRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.ErrorIs(t, f.quotes.Delete(f.ctx, f.company, req.ID), domain.ErrInvalidStatus)
}

func TestProposal_PrimeraPropuestaPasaAAnalisis(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	got, err := f.quotes.Get(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusInAnalysis, got.Status)
	for _, s := range got.Suppliers {
		assert.Equal(t, entity.InviteStatusResponded, s.Status)
	}

	list, err := f.proposals.List(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
}

func TestProposal_DuplicadaPorProveedor(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	_, err := f.proposals.Create(f.ctx, f.company, req.ID, dto.CreateProposalRequest{
		SupplierID: f.suppliers["A"],
		Items:      []dto.ProposalItemInput{{RequestItemID: req.Items[0].ID, TotalPrice: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProposal_BorradorNoAceptaPropuestas(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	_, err := f.proposals.Create(f.ctx, f.company, req.ID, dto.CreateProposalRequest{
		SupplierID: f.suppliers["A"],
		Items:      []dto.ProposalItemInput{{RequestItemID: req.Items[0].ID, TotalPrice: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestBuildProposalItems(t *testing.T) {
	req := &entity.QuotationRequest{Items: []entity.RequestItem{
		{ID: "i1", Description: "Papel", Quantity: d("10")},
		{ID: "i2", Description: "Toner", Quantity: d("2")},
	}}

	items, err := purchasing.BuildProposalItems(req, []dto.ProposalItemInput{
		{RequestItemID: "i1", UnitPrice: d("9.5")},
		{RequestItemID: "i2", TotalPrice: d("300")},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, d("10").Equal(items[0].Quantity))
	assert.True(t, d("95").Equal(items[0].TotalPrice))
	assert.True(t, d("150").Equal(items[1].UnitPrice))

	_, err = purchasing.BuildProposalItems(req, []dto.ProposalItemInput{
		{RequestItemID: "i1", UnitPrice: d("1")},
		{RequestItemID: "i1", UnitPrice: d("2")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = purchasing.BuildProposalItems(req, []dto.ProposalItemInput{{RequestItemID: "otro", UnitPrice: d("1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = purchasing.BuildProposalItems(req, []dto.ProposalItemInput{{RequestItemID: "i1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalysis_SinPropuestas(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	_, err := f.analysis.Analyze(f.ctx, f.company, req.ID)
	assert.ErrorIs(t, err, domain.ErrNoProposals)
}

func TestAnalysis_EscenarioBase(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	a, err := f.analysis.Analyze(f.ctx, f.company, req.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, a.ProposalCount)
	assert.True(t, d("570").Equal(a.OptimalTotal), "óptimo = %s", a.OptimalTotal)
	require.NotNil(t, a.BestSingle)
	assert.Equal(t, f.suppliers["A"], a.BestSingle.SupplierID)
	assert.Equal(t, "Proveedor A", a.BestSingle.SupplierName)
	assert.True(t, d("30").Equal(a.Savings))
	assert.Equal(t, domainpurchasing.RecommendationSplit, a.Recommendation)
	require.Len(t, a.Allocations, 2)
}

func TestAnalysis_SeleccionManual(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	// Comprar el papel a C (95) en lugar de B (90).
	sel, err := f.analysis.Select(f.ctx, f.company, req.ID, dto.SelectionRequest{Selections: []dto.ItemSelection{
		{RequestItemID: req.Items[0].ID, SupplierID: f.suppliers["C"]},
	}})
	require.NoError(t, err)
	assert.True(t, d("575").Equal(sel.Total), "total = %s", sel.Total)
	assert.True(t, d("5").Equal(sel.ExtraCost))

	_, err = f.analysis.Select(f.ctx, f.company, req.ID, dto.SelectionRequest{Selections: []dto.ItemSelection{
		{RequestItemID: req.Items[1].ID, SupplierID: f.suppliers["C"]},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestAnalysis_Export(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	content, name, err := f.analysis.Export(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "mapa-comparativo-SC-000001.xlsx", name)
	assert.NotEmpty(t, content)
}

func TestOrders_GeneraOptimizadoEnUnaTransaccion(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	resp, err := f.orders.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{Mode: dto.OrderModeOptimized})
	require.NoError(t, err)

	require.Len(t, resp.Orders, 2)
	assert.True(t, d("570").Equal(resp.Total))
	assert.Equal(t, "OC-000001", resp.Orders[0].Number)
	assert.Equal(t, "OC-000002", resp.Orders[1].Number)
	for _, o := range resp.Orders {
		assert.Equal(t, entity.OrderStatusIssued, o.Status)
	}

	got, err := f.quotes.Get(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCompleted, got.Status)

	list, err := f.proposals.List(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	status := map[string]string{}
	for _, p := range list.Items {
		status[p.SupplierID] = p.Status
	}
	assert.Equal(t, entity.ProposalStatusAccepted, status[f.suppliers["A"]])
	assert.Equal(t, entity.ProposalStatusAccepted, status[f.suppliers["B"]])
	assert.Equal(t, entity.ProposalStatusRejected, status[f.suppliers["C"]])

	// Una solicitud completada no vuelve a generar órdenes.
	_, err = f.orders.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{Mode: dto.OrderModeOptimized})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestOrders_ProveedorUnico(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	resp, err := f.orders.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{Mode: dto.OrderModeSingle})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, f.suppliers["A"], resp.Orders[0].SupplierID)
	assert.True(t, d("600").Equal(resp.Total))
	require.Len(t, resp.Orders[0].Items, 3)

	got, err := f.orders.Get(f.ctx, f.company, resp.Orders[0].ID)
	require.NoError(t, err)
	var lines []string
	for _, it := range got.Items {
		lines = append(lines, it.Description)
	}
	assert.Equal(t, []string{"Papel A4", "Toner", "Grapas"}, lines, "líneas en el orden de la solicitud")
}

func TestOrders_PersonalizadoSinSeleccion(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	_, err := f.orders.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{Mode: dto.OrderModeCustom})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrders_EnviarYCambiarEstado(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)
	resp, err := f.orders.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{Mode: dto.OrderModeSingle})
	require.NoError(t, err)
	orderID := resp.Orders[0].ID
	before := len(f.mailer.Sent)

	sent, err := f.orders.Send(f.ctx, f.company, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)
	require.Len(t, f.mailer.Sent, before+1)
	require.Len(t, f.mailer.Sent[before].Attachments, 1)
	assert.Equal(t, "application/pdf", f.mailer.Sent[before].Attachments[0].ContentType)

	confirmed, err := f.orders.UpdateStatus(f.ctx, f.company, orderID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, confirmed.Status)

	_, err = f.orders.UpdateStatus(f.ctx, f.company, orderID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusSent})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	pdf, name, err := f.orders.PDF(f.ctx, f.company, orderID)
	require.NoError(t, err)
	assert.Equal(t, "OC-000001.pdf", name)
	assert.NotEmpty(t, pdf)
}

func TestOrders_FalloEnTransaccionNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)
	// Una selección que referencia un ítem inexistente falla antes de escribir.
	_, err := f.orders.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{
		Mode:       dto.OrderModeCustom,
		Selections: []dto.ItemSelection{{RequestItemID: "no-existe", SupplierID: f.suppliers["A"]}},
	})
	require.Error(t, err)

	list, err := f.orders.List(f.ctx, f.company, repository.PurchaseOrderFilter{RequestID: req.ID}, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	got, err := f.quotes.Get(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusInAnalysis, got.Status)
}

// interleavedTx ejecuta before justo antes de abrir la primera transacción, cuando el
// caso de uso ya validó el estado de la solicitud pero aún no escribió nada.
type interleavedTx struct {
	inner  ports.TxRunner
	before func()
	done   bool
}

func (tx *interleavedTx) RunPurchasing(ctx context.Context, fn func(repos ports.PurchasingRepos) error) error {
	if !tx.done {
		tx.done = true
		tx.before()
	}
	return tx.inner.RunPurchasing(ctx, fn)
}

func TestOrders_EmisionesSimultaneasSoloUnaGana(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	var otherErr error
	tx := &interleavedTx{inner: f.store.Tx(), before: func() {
		_, otherErr = f.orders.Generate(f.ctx, f.company, "user-2", req.ID, dto.GenerateOrdersRequest{Mode: dto.OrderModeOptimized})
	}}
	racing := purchasing.NewPurchaseOrderUseCase(purchasing.PurchaseOrderDeps{
		Analysis: f.analysis, Requests: f.store.Requests(), Orders: f.store.Orders(), Suppliers: f.store.Suppliers(),
		Companies: f.store.Companies(), Tx: tx, PDF: memstore.Documents{}, XML: memstore.Documents{},
		Log: zerolog.Nop(),
	})

	_, err := racing.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{Mode: dto.OrderModeOptimized})
	require.NoError(t, otherErr)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	list, err := f.orders.List(f.ctx, f.company, repository.PurchaseOrderFilter{RequestID: req.ID}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2, "solo un juego de órdenes")
}

func TestOrders_InformaItemsSinOrden(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	// C no cotizó el Toner.
	resp, err := f.orders.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{
		Mode: dto.OrderModeSingle, SupplierID: f.suppliers["C"],
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Len(t, resp.Orders[0].Items, 2)
	assert.Equal(t, []string{req.Items[1].ID}, resp.UnorderedItemIDs)
}

func TestOrders_OptimizadoSinItemsPendientes(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	resp, err := f.orders.Generate(f.ctx, f.company, "user-1", req.ID, dto.GenerateOrdersRequest{Mode: dto.OrderModeOptimized})
	require.NoError(t, err)
	assert.NotNil(t, resp.UnorderedItemIDs)
	assert.Empty(t, resp.UnorderedItemIDs)
}

func TestQuotation_CancelarSobreEstadoDesactualizado(t *testing.T) {
	f := newFixture(t)
	req := f.sentRequestWithProposals(t)

	err := f.store.Requests().TransitionStatus(f.ctx, req.ID, entity.RequestStatusSent, entity.RequestStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "ya está en IN_ANALYSIS")

	got, err := f.quotes.Get(f.ctx, f.company, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusInAnalysis, got.Status)

	err = f.store.Requests().TransitionStatus(f.ctx, "no-existe", entity.RequestStatusSent, entity.RequestStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProposal_RegistroConSolicitudYaEnAnalisis(t *testing.T) {
	f := newFixture(t)
	resp := f.createRequest(t)
	_, err := f.quotes.Send(f.ctx, f.company, resp.ID)
	require.NoError(t, err)

	// Dos registros leyeron la solicitud en SENT; el primero la pasa a análisis.
	stale, err := f.store.Requests().GetByID(f.ctx, resp.ID)
	require.NoError(t, err)
	_, err = f.proposals.Create(f.ctx, f.company, resp.ID, dto.CreateProposalRequest{
		SupplierID: f.suppliers["A"],
		Items:      []dto.ProposalItemInput{{RequestItemID: resp.Items[0].ID, TotalPrice: d("100")}},
	})
	require.NoError(t, err)
	require.Equal(t, entity.RequestStatusSent, stale.Status)

	p := &entity.Proposal{
		ID: uuid.New().String(), CompanyID: f.company, RequestID: resp.ID, SupplierID: f.suppliers["B"],
		Status: entity.ProposalStatusReceived, Source: entity.ProposalSourceManual,
		Items: []entity.ProposalItem{{ID: uuid.New().String(), RequestItemID: resp.Items[0].ID, UnitPrice: d("9"), Quantity: d("10"), TotalPrice: d("90")}},
	}
	err = f.store.Tx().RunPurchasing(f.ctx, func(repos ports.PurchasingRepos) error {
		return purchasing.RecordProposal(f.ctx, repos, stale, p)
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusInAnalysis, stale.Status)

	list, err := f.proposals.List(f.ctx, f.company, resp.ID)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}
