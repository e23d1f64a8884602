package areacodes

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Summary describes a validated dataset.
type Summary struct {
	Records   int      // Total number of records
	Countries []string // Distinct country ids, sorted
}

// Validate checks dataset invariants and returns every violation joined
// into one error, or nil:
//   - e164 is unique across the dataset
//   - e164 is all digits and ends with the area code
//   - region is present
//   - country is a known ISO id or legacy alias
func Validate(codes []AreaCode) error {
	var errs []error
	seen := make(map[string]int, len(codes))
	for i, ac := range codes {
		if j, dup := seen[ac.E164]; dup {
			errs = append(errs, fmt.Errorf("record %d: e164 %q duplicates record %d", i, ac.E164, j))
		} else {
			seen[ac.E164] = i
		}
		if ac.E164 == "" || strings.Trim(ac.E164, "0123456789") != "" {
			errs = append(errs, fmt.Errorf("record %d: e164 %q is not numeric", i, ac.E164))
		} else if !strings.HasSuffix(ac.E164, ac.Code) {
			errs = append(errs, fmt.Errorf("record %d: e164 %q does not end with code %q", i, ac.E164, ac.Code))
		}
		if ac.Region == "" {
			errs = append(errs, fmt.Errorf("record %d (%s): missing region", i, ac.E164))
		}
		if !IsKnownCountry(ac.Country) {
			errs = append(errs, fmt.Errorf("record %d (%s): unknown country %q", i, ac.E164, ac.Country))
		}
	}
	return errors.Join(errs...)
}

// ValidateDataset loads the catalog's full dataset and validates it.
func ValidateDataset(ctx context.Context, c *Catalog) (Summary, error) {
	all, err := c.snapshot(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("loading dataset: %w", err)
	}
	s := Summary{Records: len(all), Countries: distinctCountries(all)}
	if err := Validate(all); err != nil {
		return s, fmt.Errorf("validating dataset: %w", err)
	}
	return s, nil
}
