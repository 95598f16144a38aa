package rules

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/abdidvp/skillguard/internal/domain"
)

// Decode copies req into a typed view using the view's json tags. Call it
// only after the table that guards the view's fields has passed; it does
// not coerce types.
func Decode(req domain.Request, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(req)); err != nil {
		return fmt.Errorf("decoding request view: %w", err)
	}
	return nil
}
