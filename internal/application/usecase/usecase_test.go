package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/application/usecase"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
	"github.com/jhoicas/Compras-api/internal/testutil/memstore"
)

func TestCompanyCreate_ModulosYCreditosIniciales(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := usecase.NewCompanyUseCase(store.Companies(), store.Credits(), 25)

	out, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Acme", TaxID: "800.197.268-4"})
	require.NoError(t, err)
	assert.Equal(t, "800197268-4", out.TaxID)
	assert.ElementsMatch(t, []string{entity.ModulePurchasing, entity.ModuleEmail, entity.ModuleAI}, out.Modules)

	ok, err := usecase.NewModuleService(store.Companies(), 0).HasActiveModule(ctx, out.ID, entity.ModuleEmail)
	require.NoError(t, err)
	assert.True(t, ok)

	bal, err := store.Credits().GetBalance(ctx, out.ID)
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.Equal(t, 25, bal.Balance)

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Otra", TaxID: "800197268-4"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCompanyCreate_DigitoVerificacionInvalido(t *testing.T) {
	uc := usecase.NewCompanyUseCase(memstore.New().Companies(), nil, 0)
	_, err := uc.Create(context.Background(), dto.CreateCompanyRequest{Name: "Acme", TaxID: "800197268-5"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSupplierCreate_NormalizaYValidaNIT(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewSupplierUseCase(memstore.New().Suppliers())
	companyID := uuid.New().String()

	out, err := uc.Create(ctx, companyID, dto.CreateSupplierRequest{
		Name: "Andina", TaxID: " 800.197.268-4 ", Email: " Ventas@Andina.TEST ",
	})
	require.NoError(t, err)
	assert.Equal(t, "800197268-4", out.TaxID)
	assert.Equal(t, "ventas@andina.test", out.Email)

	_, err = uc.Create(ctx, companyID, dto.CreateSupplierRequest{Name: "Andina 2", TaxID: "800197268-4", Email: "b@x.test"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, companyID, dto.CreateSupplierRequest{Name: "Mala", TaxID: "800197268-1", Email: "c@x.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// otra empresa puede registrar el mismo proveedor
	_, err = uc.Create(ctx, uuid.New().String(), dto.CreateSupplierRequest{Name: "Andina", TaxID: "800197268-4", Email: "v@a.test"})
	assert.NoError(t, err)
}

func TestSupplierGet_OtraEmpresaNoEncontrado(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewSupplierUseCase(memstore.New().Suppliers())
	out, err := uc.Create(ctx, "empresa-a", dto.CreateSupplierRequest{Name: "Andina", TaxID: "1", Email: "v@a.test"})
	require.NoError(t, err)

	_, err = uc.GetByID(ctx, "empresa-b", out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductCreate_CategoriaDeOtraEmpresa(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	cats := usecase.NewCategoryUseCase(store.Categories())
	products := usecase.NewProductUseCase(store.Products(), store.Categories())

	cat, err := cats.Create(ctx, "empresa-a", dto.CreateCategoryRequest{Code: "PAP", Name: "Papelería"})
	require.NoError(t, err)

	_, err = products.Create(ctx, "empresa-b", dto.CreateProductRequest{SKU: "A4", Name: "Papel", CategoryID: cat.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := products.Create(ctx, "empresa-a", dto.CreateProductRequest{SKU: "A4", Name: "Papel", CategoryID: cat.ID})
	require.NoError(t, err)
	assert.Equal(t, cat.ID, p.CategoryID)
}

func TestAIUseCase_CreditosYReembolso(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	llm := &memstore.LLM{Err: errors.New("modelo caído")}
	uc := usecase.NewAIUseCase(llm, store.Credits(), nil, zerolog.Nop())
	companyID := uuid.New().String()

	_, err := uc.ClassifyEmail(ctx, companyID, "u1", "email-1", ports.EmailClassificationInput{})
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
	assert.Equal(t, 0, llm.Calls, "sin saldo no se llama al modelo")

	credits, err := uc.AddCredits(ctx, companyID, "admin-1", dto.AddCreditsRequest{Credits: 3, Note: "recarga"})
	require.NoError(t, err)
	assert.Equal(t, 3, credits.Balance)

	// la falla del modelo devuelve el crédito consumido
	_, err = uc.ClassifyEmail(ctx, companyID, "u1", "email-1", ports.EmailClassificationInput{})
	require.Error(t, err)
	assert.Equal(t, 1, llm.Calls)

	credits, err = uc.Credits(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 3, credits.Balance)
	require.NotEmpty(t, credits.RecentUsage)
	assert.Equal(t, entity.AIOperationRefund, credits.RecentUsage[0].Operation)

	_, err = uc.AddCredits(ctx, companyID, "admin-1", dto.AddCreditsRequest{Credits: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type countingCompanies struct {
	repository.CompanyRepository
	calls int
	err   error
}

func (c *countingCompanies) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return c.CompanyRepository.HasActiveModule(ctx, companyID, moduleName)
}

func TestModuleService_CacheaRespuestas(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	company, err := usecase.NewCompanyUseCase(store.Companies(), store.Credits(), 0).
		Create(ctx, dto.CreateCompanyRequest{Name: "Acme", TaxID: "900123456"})
	require.NoError(t, err)

	repo := &countingCompanies{CompanyRepository: store.Companies()}
	svc := usecase.NewModuleService(repo, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := svc.HasActiveModule(ctx, company.ID, entity.ModulePurchasing)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, repo.calls)

	_, err = svc.HasActiveModule(ctx, company.ID, entity.ModuleAI)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls, "cada módulo tiene su propia entrada")
}

func TestModuleService_ErroresNoSeCachean(t *testing.T) {
	ctx := context.Background()
	repo := &countingCompanies{CompanyRepository: memstore.New().Companies(), err: errors.New("db caída")}
	svc := usecase.NewModuleService(repo, time.Minute)

	_, err := svc.HasActiveModule(ctx, "c1", entity.ModuleEmail)
	require.Error(t, err)
	_, err = svc.HasActiveModule(ctx, "c1", entity.ModuleEmail)
	require.Error(t, err)
	assert.Equal(t, 2, repo.calls)

	_, err = svc.HasActiveModule(ctx, "", entity.ModuleEmail)
	assert.Error(t, err)
	assert.Equal(t, 2, repo.calls)
}
