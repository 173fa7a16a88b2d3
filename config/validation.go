package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks struct tags first, then the rules that span sections.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	switch cfg.Storage.Type {
	case StorageIPFS:
		if cfg.IPFS == nil {
			return ErrIPFSMissing
		}
	case StorageR2:
		if cfg.R2.BucketName == "" {
			return fmt.Errorf("r2: bucket_name is required when storage.type is %q", StorageR2)
		}
		if cfg.R2.Endpoint == "" && cfg.R2.AccountID == "" {
			return fmt.Errorf("r2: one of endpoint or account_id is required")
		}
		if cfg.R2.AccessKeyID == "" || cfg.R2.AccessKeySecret == "" {
			return fmt.Errorf("r2: access_key_id and access_key_secret are required")
		}
	}
	return nil
}

// formatValidationError reports the first failing field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
