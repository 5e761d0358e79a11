package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrDerivedSourceExists = errors.New("el ítem derivado ya tiene un origen")
	ErrInvalidRelationship = errors.New("relación inválida para los tipos de entidad")
	ErrAttributesMismatch  = errors.New("atributos no corresponden al tipo de relación")
	ErrUnsupportedEntity   = errors.New("tipo de entidad no soportado")
)
