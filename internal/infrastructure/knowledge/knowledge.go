// Package knowledge хранит справочник строительных норм и поиск по ключевым словам.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"safenest/internal/domain/entity"
	"safenest/internal/domain/port"
	"safenest/internal/logger"
)

//go:embed codes.yaml
var defaultCodes []byte

// KnowledgeBase неизменяемый справочник норм. Безопасен для одновременного чтения.
type KnowledgeBase struct {
	codes map[string]entity.CodeEntry
}

// fileFormat формат файла справочника; подходит и исходный JSON вида {"codes": {...}}
type fileFormat struct {
	Codes map[string]entity.CodeEntry `yaml:"codes"`
}

// New собирает справочник из готовых записей
func New(entries ...entity.CodeEntry) *KnowledgeBase {
	codes := make(map[string]entity.CodeEntry, len(entries))
	for _, e := range entries {
		codes[e.ID] = e
	}
	return &KnowledgeBase{codes: codes}
}

// Load читает справочник из файла, а при пустом пути берёт встроенный.
// Ошибка чтения не фатальна: возвращается пустой справочник.
func Load(path string) *KnowledgeBase {
	data := defaultCodes
	source := "embedded"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("could not load code knowledge base", "path", path, "error", err)
			return New()
		}
		data = b
		source = path
	}

	kb, err := Parse(data)
	if err != nil {
		logger.Warn("could not parse code knowledge base", "source", source, "error", err)
		return New()
	}
	logger.Debug("code knowledge base loaded", "source", source, "codes", kb.Len())
	return kb
}

// Parse разбирает YAML или JSON с ключом codes
func Parse(data []byte) (*KnowledgeBase, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode codes: %w", err)
	}
	if len(f.Codes) == 0 {
		return nil, errors.New("no codes defined")
	}

	entries := make([]entity.CodeEntry, 0, len(f.Codes))
	for id, e := range f.Codes {
		e.ID = id
		entries = append(entries, e)
	}
	return New(entries...), nil
}

// Lookup ищет норму по точному идентификатору
func (kb *KnowledgeBase) Lookup(codeID string) (entity.CodeEntry, bool) {
	if codeID == "" {
		return entity.CodeEntry{}, false
	}
	e, ok := kb.codes[codeID]
	return e, ok
}

// SearchByKeyword грубый поиск норм по ключевым словам типа дефекта.
// Возвращает не больше двух совпадений в порядке таблицы ключевых слов.
func (kb *KnowledgeBase) SearchByKeyword(text string) []entity.CodeMatch {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	var matches []entity.CodeMatch

	for _, rule := range keywordTable {
		if !strings.Contains(lower, rule.keyword) {
			continue
		}
		for _, id := range rule.codes {
			e, ok := kb.codes[id]
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			matches = append(matches, entity.CodeMatch{
				CodeEntry:  e,
				Confidence: keywordConfidenceMin + rand.Float64()*(keywordConfidenceMax-keywordConfidenceMin),
			})
		}
	}

	if len(matches) > maxKeywordMatches {
		matches = matches[:maxKeywordMatches]
	}
	return matches
}

// Len количество норм в справочнике
func (kb *KnowledgeBase) Len() int {
	return len(kb.codes)
}

// IDs отсортированный список идентификаторов норм
func (kb *KnowledgeBase) IDs() []string {
	ids := make([]string, 0, len(kb.codes))
	for id := range kb.codes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Проверка реализации интерфейса
var _ port.CodeLookup = (*KnowledgeBase)(nil)
