package inventory

import "context"

// Classifier decides whether a message is a stock question. The GenAI
// extraction client implements this.
type Classifier interface {
	IsInventoryQuestion(ctx context.Context, message string) (bool, error)
}

// Advisor pairs a Classifier with the stock service so the engine can weave
// availability notes into a turn.
type Advisor struct {
	classifier Classifier
	service    *Service
}

// NewAdvisor creates an advisor. A nil classifier means no message is ever
// treated as a stock question.
func NewAdvisor(classifier Classifier, service *Service) *Advisor {
	return &Advisor{classifier: classifier, service: service}
}

// IsInventoryQuestion delegates to the classifier.
func (a *Advisor) IsInventoryQuestion(ctx context.Context, message string) (bool, error) {
	if a.classifier == nil {
		return false, nil
	}
	return a.classifier.IsInventoryQuestion(ctx, message)
}

// Describe renders the stock matching the conversation's requirements.
func (a *Advisor) Describe(ctx context.Context, productType string, details map[string]string) (string, error) {
	return a.service.Describe(ctx, productType, details)
}
