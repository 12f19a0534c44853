package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// QuotationUseCase casos de uso de las solicitudes de cotización.
type QuotationUseCase struct {
	requests  repository.QuotationRequestRepository
	suppliers repository.SupplierRepository
	products  repository.ProductRepository
	companies repository.CompanyRepository
	sender    ports.EmailSender
	metrics   ports.Metrics
	log       zerolog.Logger
}

// QuotationDeps dependencias del caso de uso. Sender puede ser nil si no hay SMTP.
type QuotationDeps struct {
	Requests  repository.QuotationRequestRepository
	Suppliers repository.SupplierRepository
	Products  repository.ProductRepository
	Companies repository.CompanyRepository
	Sender    ports.EmailSender
	Metrics   ports.Metrics
	Log       zerolog.Logger
}

// NewQuotationUseCase construye el caso de uso.
func NewQuotationUseCase(d QuotationDeps) *QuotationUseCase {
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	return &QuotationUseCase{
		requests:  d.Requests,
		suppliers: d.Suppliers,
		products:  d.Products,
		companies: d.Companies,
		sender:    d.Sender,
		metrics:   d.Metrics,
		log:       d.Log,
	}
}

// Create registra una solicitud en borrador con su número correlativo.
func (uc *QuotationUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateQuotationRequest) (*dto.QuotationResponse, error) {
	now := time.Now()
	req := &entity.QuotationRequest{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      entity.RequestStatusDraft,
		Deadline:    in.Deadline,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	items, err := uc.buildItems(ctx, companyID, req.ID, in.Items)
	if err != nil {
		return nil, err
	}
	req.Items = items
	invites, err := uc.buildInvites(ctx, companyID, req.ID, in.SupplierIDs)
	if err != nil {
		return nil, err
	}
	req.Suppliers = invites

	number, err := uc.requests.NextNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}
	req.Number = number
	if err := uc.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", companyID).Str("request_id", req.ID).Str("number", number).Msg("solicitud creada")
	return uc.toResponse(ctx, req)
}

// Get devuelve la solicitud con ítems y proveedores.
func (uc *QuotationUseCase) Get(ctx context.Context, companyID, id string) (*dto.QuotationResponse, error) {
	req, err := loadRequest(ctx, uc.requests, companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, req)
}

// List lista solicitudes de la empresa; status vacío = todas.
func (uc *QuotationUseCase) List(ctx context.Context, companyID, status string, limit, offset int) (*dto.QuotationListResponse, error) {
	list, err := uc.requests.ListByCompany(ctx, companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.QuotationResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toQuotationResponse(r, nil))
	}
	return &dto.QuotationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update modifica un borrador. Ítems y proveedores, si vienen, reemplazan a los actuales.
func (uc *QuotationUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateQuotationRequest) (*dto.QuotationResponse, error) {
	req, err := loadRequest(ctx, uc.requests, companyID, id)
	if err != nil {
		return nil, err
	}
	if !req.IsEditable() {
		return nil, fmt.Errorf("%w: solo se editan solicitudes en DRAFT", domain.ErrInvalidStatus)
	}
	if in.Title != nil {
		req.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		req.Description = *in.Description
	}
	if in.Deadline != nil {
		req.Deadline = in.Deadline
	}
	if in.Items != nil {
		items, err := uc.buildItems(ctx, companyID, req.ID, in.Items)
		if err != nil {
			return nil, err
		}
		req.Items = items
	}
	if in.SupplierIDs != nil {
		invites, err := uc.buildInvites(ctx, companyID, req.ID, in.SupplierIDs)
		if err != nil {
			return nil, err
		}
		req.Suppliers = invites
	}
	req.UpdatedAt = time.Now()
	if err := uc.requests.Update(ctx, req); err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, req)
}

// Delete elimina un borrador.
func (uc *QuotationUseCase) Delete(ctx context.Context, companyID, id string) error {
	req, err := loadRequest(ctx, uc.requests, companyID, id)
	if err != nil {
		return err
	}
	if !req.IsEditable() {
		return fmt.Errorf("%w: solo se eliminan solicitudes en DRAFT", domain.ErrInvalidStatus)
	}
	return uc.requests.Delete(ctx, id)
}

// Cancel cancela la solicitud si aún no se completó.
func (uc *QuotationUseCase) Cancel(ctx context.Context, companyID, id string) (*dto.QuotationResponse, error) {
	req, err := loadRequest(ctx, uc.requests, companyID, id)
	if err != nil {
		return nil, err
	}
	if !req.CanTransitionTo(entity.RequestStatusCancelled) {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidStatus, req.Status, entity.RequestStatusCancelled)
	}
	if err := uc.requests.TransitionStatus(ctx, id, req.Status, entity.RequestStatusCancelled); err != nil {
		return nil, err
	}
	req.Status = entity.RequestStatusCancelled
	uc.log.Info().Str("company_id", companyID).Str("request_id", id).Msg("solicitud cancelada")
	return uc.toResponse(ctx, req)
}

// Send envía la solicitud por correo a cada proveedor invitado que aún no la recibió.
// Los fallos de SMTP se informan por proveedor y no interrumpen el resto de envíos.
// La solicitud pasa a SENT cuando al menos un proveedor la recibió.
func (uc *QuotationUseCase) Send(ctx context.Context, companyID, id string) (*dto.SendQuotationResponse, error) {
	if uc.sender == nil {
		return nil, domain.ErrMailUnavailable
	}
	req, err := loadRequest(ctx, uc.requests, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Status != entity.RequestStatusDraft && req.Status != entity.RequestStatusSent {
		return nil, fmt.Errorf("%w: no se envía una solicitud en %s", domain.ErrInvalidStatus, req.Status)
	}
	if len(req.Suppliers) == 0 {
		return nil, fmt.Errorf("%w: la solicitud no tiene proveedores invitados", domain.ErrInvalidInput)
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	ids := make([]string, 0, len(req.Suppliers))
	for _, s := range req.Suppliers {
		ids = append(ids, s.SupplierID)
	}
	suppliers, err := suppliersByID(ctx, uc.suppliers, companyID, ids)
	if err != nil {
		return nil, err
	}

	out := &dto.SendQuotationResponse{}
	for i, inv := range req.Suppliers {
		if inv.Status == entity.InviteStatusSent || inv.Status == entity.InviteStatusResponded {
			continue
		}
		res := dto.SendResult{SupplierID: inv.SupplierID}
		s := suppliers[inv.SupplierID]
		var sendErr error
		switch {
		case s == nil:
			sendErr = fmt.Errorf("proveedor no encontrado")
		case s.Email == "":
			sendErr = fmt.Errorf("proveedor sin email")
		default:
			res.Email = s.Email
			sendErr = uc.sender.Send(ctx, quotationEmail(company, req, s))
		}

		now := time.Now()
		if sendErr != nil {
			res.Error = sendErr.Error()
			out.Failed++
			req.Suppliers[i].Status = entity.InviteStatusFailed
			req.Suppliers[i].LastError = sendErr.Error()
			uc.log.Warn().Err(sendErr).
				Str("company_id", companyID).Str("request_id", id).Str("supplier_id", inv.SupplierID).
				Msg("fallo el envío de la solicitud")
			if err := uc.requests.UpdateSupplierStatus(ctx, id, inv.SupplierID, entity.InviteStatusFailed, nil, sendErr.Error()); err != nil {
				return nil, err
			}
		} else {
			res.Sent = true
			out.Sent++
			req.Suppliers[i].Status = entity.InviteStatusSent
			req.Suppliers[i].SentAt = &now
			req.Suppliers[i].LastError = ""
			if err := uc.requests.UpdateSupplierStatus(ctx, id, inv.SupplierID, entity.InviteStatusSent, &now, ""); err != nil {
				return nil, err
			}
		}
		out.Results = append(out.Results, res)
	}
	uc.metrics.QuotationsSent("sent", out.Sent)
	uc.metrics.QuotationsSent("failed", out.Failed)

	if req.Status == entity.RequestStatusDraft && out.Sent > 0 {
		if err := uc.requests.TransitionStatus(ctx, id, entity.RequestStatusDraft, entity.RequestStatusSent); err != nil {
			return nil, err
		}
		req.Status = entity.RequestStatusSent
	}
	uc.log.Info().
		Str("company_id", companyID).Str("request_id", id).
		Int("sent", out.Sent).Int("failed", out.Failed).
		Msg("solicitud enviada a proveedores")

	resp, err := uc.toResponse(ctx, req)
	if err != nil {
		return nil, err
	}
	out.Request = *resp
	return out, nil
}

func (uc *QuotationUseCase) buildItems(ctx context.Context, companyID, requestID string, in []dto.RequestItemInput) ([]entity.RequestItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la solicitud necesita al menos un ítem", domain.ErrInvalidInput)
	}
	items := make([]entity.RequestItem, 0, len(in))
	for i, it := range in {
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: ítem %d con cantidad no positiva", domain.ErrInvalidInput, i+1)
		}
		item := entity.RequestItem{
			ID:          uuid.New().String(),
			RequestID:   requestID,
			ProductID:   it.ProductID,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitMeasure: it.UnitMeasure,
			Position:    i + 1,
		}
		if it.ProductID != "" {
			p, err := uc.products.GetByID(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil || p.CompanyID != companyID {
				return nil, fmt.Errorf("%w: producto %s no existe", domain.ErrInvalidInput, it.ProductID)
			}
			if item.Description == "" {
				item.Description = p.Name
			}
			if item.UnitMeasure == "" {
				item.UnitMeasure = p.UnitMeasure
			}
		}
		if item.Description == "" {
			return nil, fmt.Errorf("%w: ítem %d sin descripción", domain.ErrInvalidInput, i+1)
		}
		if item.UnitMeasure == "" {
			item.UnitMeasure = "UN"
		}
		items = append(items, item)
	}
	return items, nil
}

func (uc *QuotationUseCase) buildInvites(ctx context.Context, companyID, requestID string, supplierIDs []string) ([]entity.RequestSupplier, error) {
	ids := uniqueStrings(supplierIDs)
	found, err := suppliersByID(ctx, uc.suppliers, companyID, ids)
	if err != nil {
		return nil, err
	}
	invites := make([]entity.RequestSupplier, 0, len(ids))
	for _, sid := range ids {
		s, ok := found[sid]
		if !ok {
			return nil, fmt.Errorf("%w: proveedor %s no existe", domain.ErrInvalidInput, sid)
		}
		if s.Status != "active" {
			return nil, fmt.Errorf("%w: proveedor %s inactivo", domain.ErrInvalidInput, s.Name)
		}
		invites = append(invites, entity.RequestSupplier{
			RequestID:  requestID,
			SupplierID: sid,
			Status:     entity.InviteStatusPending,
		})
	}
	return invites, nil
}

func (uc *QuotationUseCase) toResponse(ctx context.Context, req *entity.QuotationRequest) (*dto.QuotationResponse, error) {
	ids := make([]string, 0, len(req.Suppliers))
	for _, s := range req.Suppliers {
		ids = append(ids, s.SupplierID)
	}
	suppliers, err := suppliersByID(ctx, uc.suppliers, req.CompanyID, ids)
	if err != nil {
		return nil, err
	}
	return toQuotationResponse(req, suppliers), nil
}
