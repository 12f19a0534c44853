package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Compras
	ErrInvalidStatus    = errors.New("transición de estado no permitida")
	ErrNoProposals      = errors.New("la solicitud no tiene propuestas")
	ErrInvalidSelection = errors.New("selección inválida: el proveedor no cotizó el ítem")

	// IA
	ErrInsufficientCredits = errors.New("créditos de IA insuficientes")
	ErrAIUnavailable       = errors.New("servicio de IA no configurado")

	// Correo
	ErrMailUnavailable = errors.New("servidor de correo no configurado")
)
