package knowledge

// keywordRule связывает ключевое слово с упорядоченным списком норм
type keywordRule struct {
	keyword string
	codes   []string
}

// keywordTable порядок правил значим: совпадения собираются сверху вниз
var keywordTable = []keywordRule{
	{"crack", []string{"R302.1", "R403.1", "R602.10"}},
	{"water", []string{"R302.1", "R806.1", "P2903.2", "M1411.3"}},
	{"electrical", []string{"E3404.1", "E3605.1"}},
	{"foundation", []string{"R403.1"}},
	{"plumbing", []string{"P2903.2"}},
	{"leak", []string{"R806.1", "P2903.2", "M1411.3"}},
	{"structural", []string{"R403.1", "R602.10"}},
	{"paint", []string{"R703.1"}},
	{"window", []string{"R308.4"}},
	{"roof", []string{"R905.2", "R806.1"}},
	{"hvac", []string{"M1411.3"}},
	{"wall", []string{"R302.1", "R602.10", "R703.1"}},
	{"moisture", []string{"R806.1", "R302.1"}},
	{"damage", []string{"R302.1", "R806.1", "R403.1"}},
	{"ceiling", []string{"R806.1"}},
}

const (
	maxKeywordMatches    = 2
	keywordConfidenceMin = 0.85
	keywordConfidenceMax = 1.00
)
