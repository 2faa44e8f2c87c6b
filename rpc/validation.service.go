package rpc

import (
	"fmt"
	"math"
	"strconv"
)

var quoteParams = []string{"action", "base_currency", "quote_currency", "amount"}

// ValidationService checks quote request parameters before they reach the
// quote engine. All parameters arrive string-typed.
type ValidationService struct{}

func NewValidationService() *ValidationService {
	return &ValidationService{}
}

func (s *ValidationService) ValidateQuoteParams(params map[string]string) error {
	for _, param := range quoteParams {
		value, ok := params[param]
		if !ok {
			return fmt.Errorf("missing parameter '%s'", param)
		}
		if value == "" {
			return fmt.Errorf("parameter '%s' is empty", param)
		}
	}

	action := params["action"]
	if action != "buy" && action != "sell" {
		return fmt.Errorf("'%s' is not valid action", action)
	}

	amount, err := strconv.ParseFloat(params["amount"], 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("'%s' is not valid amount", params["amount"])
	}

	return nil
}
