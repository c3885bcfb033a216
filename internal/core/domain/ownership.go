package domain

import "github.com/google/uuid"

// IsOwnedBy сравнивает владельца записи с действующим пользователем.
// uuid.UUID сравнивается по значению, это и есть каноническая форма идентификатора.
func (p *Property) IsOwnedBy(actor uuid.UUID) bool {
	return actor != uuid.Nil && p.CreatedBy == actor
}

// CheckOwnership - guard для мутаций. Отсутствие записи проверяется раньше, в use case.
func CheckOwnership(p *Property, actor uuid.UUID) error {
	if actor == uuid.Nil {
		return ErrUnauthenticated
	}
	if !p.IsOwnedBy(actor) {
		return ErrNotOwner
	}
	return nil
}
