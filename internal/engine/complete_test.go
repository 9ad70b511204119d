package engine

import (
	"testing"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

func TestIsCompleteQualifiedLead(t *testing.T) {
	conv := qualifiedLead()
	if !IsComplete(testCatalog(), conv) {
		t.Error("expected qualified lead to be complete")
	}
	if q := Select(testCatalog(), conv); q != nil {
		t.Errorf("selector and predicate must agree on the product branch, got %+v", q)
	}
}

func TestIsCompleteRequiresTwoTokenName(t *testing.T) {
	conv := qualifiedLead()
	conv.Name = "Ana"
	if IsComplete(testCatalog(), conv) {
		t.Error("single token name should not be complete")
	}
}

func TestIsCompleteOtherHelpTypeIsSufficient(t *testing.T) {
	conv := models.NewConversation("user1")
	conv.Name = "Ana Gómez"
	conv.HelpType = models.HelpTypeOther
	if !IsComplete(testCatalog(), conv) {
		t.Error("other help type with full name should be complete")
	}
	if q := Select(testCatalog(), conv); q != nil {
		t.Errorf("selector should also stop here, got %+v", q)
	}
}

// Divergence branch: a surname on file satisfies the selector's full-name
// check, but the predicate requires two tokens in the name itself. The
// interview ends without the lead counting as qualified.
func TestOtherHelpTypeDivergence(t *testing.T) {
	conv := models.NewConversation("user1")
	conv.Name = "Ana"
	conv.Surname = "Gómez" // on file, but the stored name stayed single-token
	conv.HelpType = models.HelpTypeOther

	if q := Select(testCatalog(), conv); q != nil {
		t.Fatalf("selector should terminate on other help type, got %+v", q)
	}
	if IsComplete(testCatalog(), conv) {
		t.Error("predicate should stay false with a single-token name")
	}
}

// Divergence branch: a declined quote ends the interview while the company
// slots stay empty, so the lead is not complete.
func TestDeclinedQuoteDivergence(t *testing.T) {
	conv := models.NewConversation("user1")
	conv.Name = "Ana Gómez"
	conv.HelpType = models.HelpTypeProduct
	conv.ProductType = "welder"
	conv.ProductDetails["amperage"] = "200"
	conv.ProductDetails["power_source"] = "electric"
	conv.QuoteIntent = "no"

	if q := Select(testCatalog(), conv); q != nil {
		t.Fatalf("selector should terminate on declined quote, got %+v", q)
	}
	if IsComplete(testCatalog(), conv) {
		t.Error("declined quote must not count as a complete lead")
	}
}

// A lead whose surname arrives before their name still qualifies on the
// product branch once the name is merged in and composed.
func TestIsCompleteSurnameFirstLead(t *testing.T) {
	conv := qualifiedLead()
	conv.Name = ""
	conv.Surname = ""
	Merge(testCatalog(), conv, Extraction{Fields: map[string]string{models.FieldSurname: "Gómez"}})
	Merge(testCatalog(), conv, Extraction{Fields: map[string]string{models.FieldName: "Ana"}})
	if conv.Name != "Ana Gómez" {
		t.Fatalf("expected composed name, got %q", conv.Name)
	}
	if !IsComplete(testCatalog(), conv) {
		t.Error("surname-first lead should be complete once the name is merged")
	}
}

func TestIsCompleteRequiresQuoteIntent(t *testing.T) {
	conv := qualifiedLead()
	conv.QuoteIntent = ""
	if IsComplete(testCatalog(), conv) {
		t.Error("missing quote intent should not be complete")
	}
}

func TestIsCompleteRequiresCompanyFields(t *testing.T) {
	conv := qualifiedLead()
	conv.Email = ""
	if IsComplete(testCatalog(), conv) {
		t.Error("missing company field should not be complete")
	}
}

func TestIsCompleteSentinelCompanyFieldNotEnough(t *testing.T) {
	conv := qualifiedLead()
	conv.Email = models.AnswerDoesNotHave
	if IsComplete(testCatalog(), conv) {
		t.Error("sentinel company field should not satisfy completion")
	}
	// and the selector agrees: it keeps asking
	if q := Select(testCatalog(), conv); q == nil {
		t.Error("selector should still ask for the pending company field")
	}
}

func TestIsCompleteSentinelDetailIsEnough(t *testing.T) {
	conv := qualifiedLead()
	conv.ProductDetails["amperage"] = models.AnswerNotSpecified
	if !IsComplete(testCatalog(), conv) {
		t.Error("a sentinel answer should satisfy a detail field that allows it")
	}
}

func TestIsCompleteRequiresDetailFields(t *testing.T) {
	conv := qualifiedLead()
	delete(conv.ProductDetails, "power_source")
	if IsComplete(testCatalog(), conv) {
		t.Error("missing detail field should not be complete")
	}
}
