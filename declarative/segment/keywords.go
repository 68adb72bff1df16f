package segment

import (
	"sync"

	"github.com/c360/streampump/errors"
)

// Default keyword selecting the declarative processor class.
const (
	DefaultKeyword    = "processor"
	DeclarativeModule = "declarative"
	DeclarativeClass  = "DeclarativeProcessor"
)

// ClassRef names a constructible class.
type ClassRef struct {
	Module string
	Class  string
}

// KeywordRegistry maps declarative keywords to the class they select. A
// definition carrying a registered keyword at top level uses that keyword's
// value as its declaration body.
type KeywordRegistry struct {
	order   []string
	classes map[string]ClassRef
	mu      sync.RWMutex
}

// NewKeywordRegistry creates an empty keyword registry
func NewKeywordRegistry() *KeywordRegistry {
	return &KeywordRegistry{classes: make(map[string]ClassRef)}
}

var defaultKeywords = newDefaultKeywords()

func newDefaultKeywords() *KeywordRegistry {
	k := NewKeywordRegistry()
	k.order = append(k.order, DefaultKeyword)
	k.classes[DefaultKeyword] = ClassRef{Module: DeclarativeModule, Class: DeclarativeClass}
	return k
}

// DefaultKeywords returns the process-wide keyword registry.
func DefaultKeywords() *KeywordRegistry {
	return defaultKeywords
}

// RegisterKeyword registers a keyword in the process-wide registry.
func RegisterKeyword(keyword, module, class string) error {
	return defaultKeywords.Register(keyword, module, class)
}

// Register maps keyword to (module, class). Registering a keyword again
// replaces its class and keeps its position.
func (k *KeywordRegistry) Register(keyword, module, class string) error {
	if keyword == "" || module == "" || class == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "KeywordRegistry", "Register", "keyword validation")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, exists := k.classes[keyword]; !exists {
		k.order = append(k.order, keyword)
	}
	k.classes[keyword] = ClassRef{Module: module, Class: class}
	return nil
}

// Keywords returns the registered keywords in registration order.
func (k *KeywordRegistry) Keywords() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]string(nil), k.order...)
}

// Normalize rewrites def for every registered keyword it carries: the
// keyword's value becomes the declaration body and the module and class are
// replaced. When several keywords match, the last registered one wins.
func (k *KeywordRegistry) Normalize(def *Definition) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	for _, keyword := range k.order {
		node := def.Node(keyword)
		if node == nil {
			continue
		}
		ref := k.classes[keyword]
		def.Declaration = node
		def.Keyword = keyword
		def.Module = ref.Module
		def.Class = ref.Class
	}
}
