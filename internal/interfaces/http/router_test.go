package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/purchasing"
	"github.com/jhoicas/Compras-api/internal/application/usecase"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Compras-api/internal/interfaces/http"
	"github.com/jhoicas/Compras-api/internal/testutil/memstore"
	pkgjwt "github.com/jhoicas/Compras-api/pkg/jwt"
)

type apiFixture struct {
	app     *fiber.App
	store   *memstore.Store
	mailer  *memstore.Mailer
	company string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	mailer := &memstore.Mailer{FailFor: map[string]error{}}
	log := zerolog.Nop()

	companyID := uuid.New().String()
	require.NoError(t, store.Companies().Create(ctx, &entity.Company{
		ID: companyID, Name: "Acme", TaxID: "900123456", Email: "compras@acme.test", Status: "active",
	}))

	analysisUC := purchasing.NewAnalysisUseCase(store.Requests(), store.Proposals(), store.Suppliers(), store.Companies(), memstore.Documents{}, nil, log)
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		SupplierUC: usecase.NewSupplierUseCase(store.Suppliers()),
		CompanyUC:  usecase.NewCompanyUseCase(store.Companies(), store.Credits(), 0),
		AIUC:       usecase.NewAIUseCase(&memstore.LLM{}, store.Credits(), nil, log),
		Modules:    usecase.NewModuleService(store.Companies(), 0),
		QuotationUC: purchasing.NewQuotationUseCase(purchasing.QuotationDeps{
			Requests: store.Requests(), Suppliers: store.Suppliers(), Products: store.Products(),
			Companies: store.Companies(), Sender: mailer, Log: log,
		}),
		ProposalUC: purchasing.NewProposalUseCase(store.Requests(), store.Proposals(), store.Suppliers(), store.Tx(), nil, log),
		AnalysisUC: analysisUC,
		OrderUC: purchasing.NewPurchaseOrderUseCase(purchasing.PurchaseOrderDeps{
			Analysis: analysisUC, Requests: store.Requests(), Orders: store.Orders(), Suppliers: store.Suppliers(),
			Companies: store.Companies(), Tx: store.Tx(), PDF: memstore.Documents{}, XML: memstore.Documents{},
			Sender: mailer, Log: log,
		}),
		JWTSecret: testJWTSecret,
	})
	return &apiFixture{app: app, store: store, mailer: mailer, company: companyID}
}

func (f *apiFixture) activate(t *testing.T, module string) {
	t.Helper()
	require.NoError(t, f.store.Companies().ActivateModule(context.Background(), &entity.CompanyModule{
		ID: uuid.New().String(), CompanyID: f.company, ModuleName: module, IsActive: true, ActivatedAt: time.Now(),
	}))
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, testExpMin, pkgjwt.Identity{
			UserID: testUserID, CompanyID: f.company, Role: role,
		})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestSuppliers_CrearYListar(t *testing.T) {
	f := newAPIFixture(t)

	resp, raw := f.do(t, http.MethodPost, "/api/suppliers", "comprador", dto.CreateSupplierRequest{
		Name: "Papelería Andina", TaxID: "800111222", Email: "ventas@andina.test",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created dto.SupplierResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, f.company, created.CompanyID)

	resp, raw = f.do(t, http.MethodGet, "/api/suppliers", "consulta", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.SupplierListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)
	assert.Equal(t, 20, list.Page.Limit)

	resp, raw = f.do(t, http.MethodPost, "/api/suppliers", "comprador", dto.CreateSupplierRequest{
		Name: "Otra", TaxID: "800111222", Email: "otra@andina.test",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decodeError(t, raw).Code)
}

func TestSuppliers_ValidacionDeCuerpo(t *testing.T) {
	f := newAPIFixture(t)

	resp, raw := f.do(t, http.MethodPost, "/api/suppliers", "admin", dto.CreateSupplierRequest{
		Name: "Sin correo", TaxID: "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decodeError(t, raw)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "email")
}

func TestSuppliers_ConsultaNoPuedeEscribir(t *testing.T) {
	f := newAPIFixture(t)
	resp, raw := f.do(t, http.MethodPost, "/api/suppliers", "consulta", dto.CreateSupplierRequest{
		Name: "X", TaxID: "1", Email: "x@x.test",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Code)
}

func TestSuppliers_NoEncontrado(t *testing.T) {
	f := newAPIFixture(t)
	resp, raw := f.do(t, http.MethodGet, "/api/suppliers/"+uuid.New().String(), "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)
}

func TestQuotationRequests_RequiereModulo(t *testing.T) {
	f := newAPIFixture(t)

	resp, raw := f.do(t, http.MethodGet, "/api/quotation-requests", "admin", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_DISABLED", decodeError(t, raw).Code)

	f.activate(t, entity.ModulePurchasing)
	resp, _ = f.do(t, http.MethodGet, "/api/quotation-requests", "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestQuotationRequests_CrearYEnviar(t *testing.T) {
	f := newAPIFixture(t)
	f.activate(t, entity.ModulePurchasing)

	_, raw := f.do(t, http.MethodPost, "/api/suppliers", "admin", dto.CreateSupplierRequest{
		Name: "Andina", TaxID: "800111222", Email: "ventas@andina.test",
	})
	var sup dto.SupplierResponse
	require.NoError(t, json.Unmarshal(raw, &sup))

	resp, raw := f.do(t, http.MethodPost, "/api/quotation-requests", "comprador", map[string]any{
		"title":        "Papelería",
		"items":        []map[string]any{{"description": "Papel A4", "quantity": "10", "unit_measure": "RESMA"}},
		"supplier_ids": []string{sup.ID},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var rfq dto.QuotationResponse
	require.NoError(t, json.Unmarshal(raw, &rfq))
	assert.Equal(t, entity.RequestStatusDraft, rfq.Status)

	resp, raw = f.do(t, http.MethodPost, "/api/quotation-requests/"+rfq.ID+"/send", "comprador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var sent dto.SendQuotationResponse
	require.NoError(t, json.Unmarshal(raw, &sent))
	assert.Equal(t, 1, sent.Sent)
	assert.Equal(t, entity.RequestStatusSent, sent.Request.Status)
	require.Len(t, f.mailer.Sent, 1)
	assert.Equal(t, []string{"ventas@andina.test"}, f.mailer.Sent[0].To)

	// reenviar una solicitud ya enviada es un conflicto de estado
	resp, raw = f.do(t, http.MethodPost, "/api/quotation-requests/"+rfq.ID+"/send", "comprador", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATUS", decodeError(t, raw).Code)
}

func TestCompanies_SoloLaPropia(t *testing.T) {
	f := newAPIFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/api/companies/"+f.company, "consulta", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := f.do(t, http.MethodGet, "/api/companies/"+uuid.New().String(), "admin", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Code)
}

func TestRutaInexistente(t *testing.T) {
	f := newAPIFixture(t)
	resp, raw := f.do(t, http.MethodGet, "/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)
}

type quotedRFQ struct {
	id       string
	papel    string
	toner    string
	andina   string
	papelera string
}

// quotedRFQ crea y envía una solicitud (Papel A4 x10, Tóner x2) con dos propuestas:
// Andina cotiza 100/200 y Papelera 90 solo por el papel.
func (f *apiFixture) quotedRFQ(t *testing.T) quotedRFQ {
	t.Helper()
	f.activate(t, entity.ModulePurchasing)
	var out quotedRFQ
	for name, dst := range map[string]*string{"Andina": &out.andina, "Papelera": &out.papelera} {
		resp, raw := f.do(t, http.MethodPost, "/api/suppliers", "admin", dto.CreateSupplierRequest{
			Name: name, TaxID: "NIT-" + name, Email: "ventas@" + name + ".test",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
		var s dto.SupplierResponse
		require.NoError(t, json.Unmarshal(raw, &s))
		*dst = s.ID
	}

	resp, raw := f.do(t, http.MethodPost, "/api/quotation-requests", "comprador", map[string]any{
		"title": "Papelería",
		"items": []map[string]any{
			{"description": "Papel A4", "quantity": "10"},
			{"description": "Tóner", "quantity": "2"},
		},
		"supplier_ids": []string{out.andina, out.papelera},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var rfq dto.QuotationResponse
	require.NoError(t, json.Unmarshal(raw, &rfq))
	out.id, out.papel, out.toner = rfq.ID, rfq.Items[0].ID, rfq.Items[1].ID

	resp, raw = f.do(t, http.MethodPost, "/api/quotation-requests/"+out.id+"/send", "comprador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	proposals := []map[string]any{
		{"supplier_id": out.andina, "items": []map[string]any{
			{"request_item_id": out.papel, "total_price": "100"},
			{"request_item_id": out.toner, "total_price": "200"},
		}},
		{"supplier_id": out.papelera, "items": []map[string]any{
			{"request_item_id": out.papel, "total_price": "90"},
		}},
	}
	for _, p := range proposals {
		resp, raw = f.do(t, http.MethodPost, "/api/quotation-requests/"+out.id+"/proposals", "comprador", p)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}
	return out
}

func TestAnalysis_Optimizado(t *testing.T) {
	f := newAPIFixture(t)
	rfq := f.quotedRFQ(t)

	resp, raw := f.do(t, http.MethodGet, "/api/quotation-requests/"+rfq.id+"/analysis", "consulta", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var a dto.AnalysisResponse
	require.NoError(t, json.Unmarshal(raw, &a))
	assert.Equal(t, 2, a.ProposalCount)
	assert.Equal(t, "290", a.OptimalTotal.String())
	require.Len(t, a.Items, 2)
	require.NotNil(t, a.Items[0].Best)
	assert.Equal(t, rfq.papelera, a.Items[0].Best.SupplierID)
	assert.Len(t, a.Allocations, 2)

	resp, raw = f.do(t, http.MethodGet, "/api/quotation-requests/"+rfq.id+"/analysis/export", "consulta", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}

func TestAnalysis_SeleccionManual(t *testing.T) {
	f := newAPIFixture(t)
	rfq := f.quotedRFQ(t)
	path := "/api/quotation-requests/" + rfq.id + "/analysis/selection"

	resp, raw := f.do(t, http.MethodPost, path, "comprador", map[string]any{
		"selections": []map[string]string{{"request_item_id": rfq.papel, "supplier_id": rfq.andina}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var sel dto.SelectionResponse
	require.NoError(t, json.Unmarshal(raw, &sel))
	assert.Equal(t, "300", sel.Total.String())
	assert.Equal(t, "10", sel.ExtraCost.String())
	assert.Equal(t, 1, sel.Overrides)

	// Papelera no cotizó el tóner.
	resp, raw = f.do(t, http.MethodPost, path, "comprador", map[string]any{
		"selections": []map[string]string{{"request_item_id": rfq.toner, "supplier_id": rfq.papelera}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_SELECTION", decodeError(t, raw).Code)

	resp, raw = f.do(t, http.MethodPost, path, "comprador", map[string]any{
		"selections": []map[string]string{{"request_item_id": rfq.toner}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)
}

func TestAnalysis_SinPropuestas(t *testing.T) {
	f := newAPIFixture(t)
	f.activate(t, entity.ModulePurchasing)
	resp, raw := f.do(t, http.MethodPost, "/api/quotation-requests", "comprador", map[string]any{
		"title": "Vacía",
		"items": []map[string]any{{"description": "Papel A4", "quantity": "1"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var rfq dto.QuotationResponse
	require.NoError(t, json.Unmarshal(raw, &rfq))

	resp, raw = f.do(t, http.MethodGet, "/api/quotation-requests/"+rfq.ID+"/analysis", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NO_PROPOSALS", decodeError(t, raw).Code)
}

func TestPurchaseOrders_GenerarOptimizado(t *testing.T) {
	f := newAPIFixture(t)
	rfq := f.quotedRFQ(t)
	path := "/api/quotation-requests/" + rfq.id + "/purchase-orders"

	resp, raw := f.do(t, http.MethodPost, path, "consulta", map[string]any{"mode": "OPTIMIZED"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Code)

	resp, raw = f.do(t, http.MethodPost, path, "comprador", map[string]any{"mode": "OPTIMIZED"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var gen dto.GenerateOrdersResponse
	require.NoError(t, json.Unmarshal(raw, &gen))
	require.Len(t, gen.Orders, 2)
	assert.Equal(t, "290", gen.Total.String())
	assert.Empty(t, gen.UnorderedItemIDs)

	resp, raw = f.do(t, http.MethodPost, path, "comprador", map[string]any{"mode": "OPTIMIZED"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATUS", decodeError(t, raw).Code)

	resp, raw = f.do(t, http.MethodGet, "/api/purchase-orders?request_id="+rfq.id, "consulta", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var list dto.PurchaseOrderListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Items, 2)

	orderID := gen.Orders[0].ID
	resp, raw = f.do(t, http.MethodGet, "/api/purchase-orders/"+orderID+"/pdf", "consulta", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(raw), gen.Orders[0].Number)

	resp, raw = f.do(t, http.MethodPatch, "/api/purchase-orders/"+orderID+"/status", "comprador", map[string]string{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var o dto.PurchaseOrderResponse
	require.NoError(t, json.Unmarshal(raw, &o))
	assert.Equal(t, entity.OrderStatusConfirmed, o.Status)
}

func TestPurchaseOrders_ModoInvalido(t *testing.T) {
	f := newAPIFixture(t)
	rfq := f.quotedRFQ(t)

	resp, raw := f.do(t, http.MethodPost, "/api/quotation-requests/"+rfq.id+"/purchase-orders", "comprador", map[string]any{"mode": "BARATO"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)
}

func TestAICredits_RequiereModulo(t *testing.T) {
	f := newAPIFixture(t)

	resp, raw := f.do(t, http.MethodGet, "/api/ai/credits", "admin", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_DISABLED", decodeError(t, raw).Code)

	f.activate(t, entity.ModuleAI)
	resp, raw = f.do(t, http.MethodGet, "/api/ai/credits", "consulta", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
}
