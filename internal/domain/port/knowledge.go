package port

import "safenest/internal/domain/entity"

// CodeLookup справочник строительных норм
type CodeLookup interface {
	// Lookup ищет норму по точному идентификатору
	Lookup(codeID string) (entity.CodeEntry, bool)

	// SearchByKeyword подбирает до двух норм по ключевым словам в тексте
	SearchByKeyword(text string) []entity.CodeMatch
}
