package payment

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Rule is a named location inside a webhook payload.
type Rule struct {
	Name string
	Path []string
}

func rule(path string) Rule {
	return Rule{Name: path, Path: strings.Split(path, ".")}
}

// Field names of a normalized sale.
const (
	FieldEvent         = "event"
	FieldStatus        = "status"
	FieldCustomerName  = "customer_name"
	FieldCustomerEmail = "customer_email"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldProductName   = "product_name"
	FieldTransactionID = "transaction_id"
)

// FieldRules lists, per normalized field, the extraction rules in priority order.
var FieldRules = map[string][]Rule{
	FieldEvent:         {rule("event"), rule("type"), rule("data.event"), rule("status")},
	FieldStatus:        {rule("data.status"), rule("status"), rule("data.order.status")},
	FieldCustomerName:  {rule("data.customer.name"), rule("customer.name"), rule("data.customer_name"), rule("customer_name"), rule("buyer.name")},
	FieldCustomerEmail: {rule("data.customer.email"), rule("customer.email"), rule("data.customer_email"), rule("customer_email"), rule("buyer.email")},
	FieldAmount:        {rule("data.amount"), rule("amount"), rule("data.baseAmount"), rule("data.order.amount"), rule("total")},
	FieldCurrency:      {rule("data.currency"), rule("currency")},
	FieldProductName:   {rule("data.product.name"), rule("product.name"), rule("data.offer.name"), rule("product_name")},
	FieldTransactionID: {rule("data.id"), rule("data.refId"), rule("transaction_id"), rule("id"), rule("data.order.id")},
}

// Lookup resolves the rule's path inside a decoded JSON payload.
func (r Rule) Lookup(payload interface{}) (interface{}, bool) {
	cur := payload
	for _, key := range r.Path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// String matches when the path holds a non-blank string or a number.
func (r Rule) String(payload interface{}) (string, bool) {
	v, ok := r.Lookup(payload)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	}
	return "", false
}

// Float matches when the path holds a number or a numeric string.
func (r Rule) Float(payload interface{}) (float64, bool) {
	v, ok := r.Lookup(payload)
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case float64:
		return val, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// FirstString applies rules in order and returns the first match.
func FirstString(rules []Rule, payload interface{}) (string, bool) {
	for _, r := range rules {
		if s, ok := r.String(payload); ok {
			return s, true
		}
	}
	return "", false
}

// FirstFloat applies rules in order and returns the first match.
func FirstFloat(rules []Rule, payload interface{}) (float64, bool) {
	for _, r := range rules {
		if f, ok := r.Float(payload); ok {
			return f, true
		}
	}
	return 0, false
}
