package intent

import (
	"fmt"

	"github.com/jwhyun/finbot/internal/config"
	"github.com/jwhyun/finbot/internal/llm"
)

// NewClassifier builds the classifier variant selected in the config.
func NewClassifier(cfg *config.Config, provider llm.Provider) (Classifier, error) {
	switch cfg.Classifier {
	case config.ClassifierKeyword:
		return NewKeywordClassifier(), nil
	case config.ClassifierModel:
		return NewModelClassifier(provider, cfg.RouterModel), nil
	case config.ClassifierHybrid:
		return NewHybridClassifier(provider, cfg.RouterModel), nil
	default:
		return nil, fmt.Errorf("unsupported classifier %q", cfg.Classifier)
	}
}
