package catalog

import "lunelle.GO/model/entity"

// OptionGroup is one option name and its distinct values in first-seen order.
type OptionGroup struct {
	Name   string
	Values []string
}

// OptionGroups collects the product's options across all variants.
// Products with only the placeholder "Title" option have no groups.
func OptionGroups(p entity.Product) []OptionGroup {
	var groups []OptionGroup
	index := map[string]int{}
	for _, v := range p.Variants {
		for _, o := range v.SelectedOptions {
			i, ok := index[o.Name]
			if !ok {
				i = len(groups)
				index[o.Name] = i
				groups = append(groups, OptionGroup{Name: o.Name})
			}
			if !containsValue(groups[i].Values, o.Value) {
				groups[i].Values = append(groups[i].Values, o.Value)
			}
		}
	}
	if len(groups) == 1 && groups[0].Name == "Title" && len(groups[0].Values) == 1 {
		return nil
	}
	return groups
}

// DefaultVariant is the first variant, or nil for a product without variants.
func DefaultVariant(p entity.Product) *entity.Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	v := p.Variants[0]
	return &v
}

// FindVariant returns the variant whose options match every given name/value pair.
func FindVariant(p entity.Product, values map[string]string) *entity.Variant {
	for _, v := range p.Variants {
		match := true
		for name, value := range values {
			if got, ok := v.OptionValue(name); !ok || got != value {
				match = false
				break
			}
		}
		if match {
			found := v
			return &found
		}
	}
	return nil
}

// SelectOption changes one option of the current selection and returns the
// variant matching the new combination. When no variant matches, current is kept.
func SelectOption(p entity.Product, current *entity.Variant, name, value string) *entity.Variant {
	values := map[string]string{}
	if current != nil {
		for _, o := range current.SelectedOptions {
			values[o.Name] = o.Value
		}
	}
	values[name] = value
	if v := FindVariant(p, values); v != nil {
		return v
	}
	return current
}

// CanAddToCart reports whether a variant is selected and purchasable.
func CanAddToCart(v *entity.Variant) bool {
	return v != nil && v.AvailableForSale
}

func containsValue(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
