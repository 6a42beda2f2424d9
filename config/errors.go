package config

import "github.com/halidom/respite/internal/apperr"

var (
	errReadConfig = &apperr.Error{
		Message: "reading config file failed: %v",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed: %v",
	}
)
