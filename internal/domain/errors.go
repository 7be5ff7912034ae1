package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrProductInactive    = errors.New("producto inactivo")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")

	// ErrTxConflict conflicto de serialización detectado por la capa de
	// persistencia; el motor de mutaciones lo reintenta de forma acotada.
	ErrTxConflict = errors.New("conflicto de transacción")

	// ErrStorage fallo de persistencia no recuperable (BD caída, reintentos agotados).
	ErrStorage = errors.New("error de almacenamiento")

	// ErrInconsistentLedger el producto fue mutado pero el append al ledger
	// falló. Dentro de una transacción provoca rollback; se reporta igual para
	// que un operador pueda reconciliar si la capa de storage no fuera atómica.
	ErrInconsistentLedger = errors.New("ledger de stock inconsistente")
)
