package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// ModuleService responde si una empresa tiene activo un módulo (purchasing, email, ai).
// Cada petición protegida lo consulta, así que recuerda la respuesta durante ttl.
type ModuleService struct {
	companyRepo repository.CompanyRepository
	ttl         time.Duration
	now         func() time.Time

	mu    sync.Mutex
	cache map[moduleKey]moduleEntry
}

type moduleKey struct{ companyID, module string }

type moduleEntry struct {
	active  bool
	expires time.Time
}

// NewModuleService construye el servicio. ttl <= 0 desactiva la caché.
func NewModuleService(companyRepo repository.CompanyRepository, ttl time.Duration) *ModuleService {
	return &ModuleService{
		companyRepo: companyRepo,
		ttl:         ttl,
		now:         time.Now,
		cache:       make(map[moduleKey]moduleEntry),
	}
}

// HasActiveModule devuelve false sin error cuando el módulo no está contratado o venció.
// El error queda para fallos de infraestructura y nunca se cachea.
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	key := moduleKey{companyID, moduleName}
	if s.ttl > 0 {
		s.mu.Lock()
		e, ok := s.cache[key]
		s.mu.Unlock()
		if ok && s.now().Before(e.expires) {
			return e.active, nil
		}
	}

	active, err := s.companyRepo.HasActiveModule(ctx, companyID, moduleName)
	if err != nil {
		return false, err
	}
	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[key] = moduleEntry{active: active, expires: s.now().Add(s.ttl)}
		s.mu.Unlock()
	}
	return active, nil
}

