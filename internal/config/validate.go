// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig wraps every validation failure returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the fields the console cannot start without. A missing
// CoreLibPath while UseCoreLibrary is set is reported on its own since it is
// the most common mistake in copied appsettings files.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required_if":
			if fe.Field() == "CoreLibPath" {
				return fmt.Errorf("%w: CoreLibPath is required when UseCoreLibrary is true", ErrInvalidConfig)
			}
			missing = append(missing, field)
		case "required":
			missing = append(missing, field)
		default:
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			invalid = append(invalid, fmt.Sprintf("%s (%s, got %q)", field, rule, fmt.Sprint(fe.Value())))
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing required configuration fields: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid configuration values: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}
