package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/logging"
)

// ValidationError is one failed check on a config field.
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult collects the outcome of ValidateConfigWithDetails.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors reports whether any check failed.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings reports whether any check produced a warning.
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String lists errors then warnings with their suggestions.
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("❌ Validation Errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("⚠️  Validation Warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails checks every section of config. Errors make the
// config unusable; warnings are logged by the caller.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateDictionariesDetails(config.Dictionaries, result)
	validateHyphenationDetails(&config.Hyphenation, result)
	validateServerConfigDetails(&config.Server, result)
	validateLogConfigDetails(&config.Log, result)
	validateStoreConfigDetails(&config.Store, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateDictionariesDetails(dicts []DictionaryConfig, result *ValidationResult) {
	if len(dicts) == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "dictionaries",
			Message: "no dictionaries configured",
			Suggestions: []string{
				"Add a dictionary entry with a language and a pattern file path",
				"Pass --dict on the command line",
			},
		})
		return
	}

	seen := make(map[string]bool, len(dicts))
	for i, d := range dicts {
		field := fmt.Sprintf("dictionaries[%d]", i)

		tag, err := language.Parse(d.Language)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".language",
				Value:   d.Language,
				Message: fmt.Sprintf("invalid language tag %q", d.Language),
				Suggestions: []string{
					"Use a BCP 47 tag such as en-US, de or de-1996",
				},
			})
		} else if seen[tag.String()] {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".language",
				Value:   d.Language,
				Message: fmt.Sprintf("language %s is configured twice", tag),
			})
		} else {
			seen[tag.String()] = true
		}

		if err := validatePath(d.Path); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".path",
				Value:   d.Path,
				Message: err.Error(),
			})
			continue
		}
		if _, err := os.Stat(d.Path); err != nil {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   field + ".path",
				Value:   d.Path,
				Message: "dictionary file does not exist",
				Suggestions: []string{
					"Check the path relative to the working directory",
				},
			})
		}
	}
}

func validateHyphenationDetails(config *HyphenationConfig, result *ValidationResult) {
	thresholds := map[string]int{
		"hyphenation.min_word_length": config.MinWordLength,
		"hyphenation.left_min":        config.LeftMin,
		"hyphenation.right_min":       config.RightMin,
	}
	for _, field := range []string{"hyphenation.min_word_length", "hyphenation.left_min", "hyphenation.right_min"} {
		if value := thresholds[field]; value < 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:       field,
				Value:       value,
				Message:     "threshold cannot be negative",
				Suggestions: []string{"Defaults are 5, 2 and 2"},
			})
		}
	}

	if config.Mark == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "hyphenation.mark",
			Value:   config.Mark,
			Message: "mark cannot be empty",
			Suggestions: []string{
				"The default is the soft hyphen U+00AD",
				"Use \"-\" for visible hyphens",
			},
		})
	}

	if _, err := language.Parse(config.DefaultLanguage); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "hyphenation.default_language",
			Value:   config.DefaultLanguage,
			Message: fmt.Sprintf("invalid language tag %q", config.DefaultLanguage),
		})
	}
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			Suggestions: []string{
				"Use a port between 1024-65535 for non-privileged access",
				"Port 0 allows system to assign an available port",
			},
		})
	} else if config.Port > 0 && config.Port < 1024 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: "port below 1024 requires elevated privileges",
		})
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				result.Errors = append(result.Errors, ValidationError{
					Field:   "server.host",
					Value:   config.Host,
					Message: fmt.Sprintf("host contains dangerous character: %s", char),
					Suggestions: []string{
						"Use 'localhost' for local development",
						"Use '0.0.0.0' to bind to all interfaces",
					},
				})
				break
			}
		}
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "server.allowed_origins",
				Value:   origin,
				Message: "wildcard origin accepts WebSocket connections from any site",
			})
		}
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "log.level",
			Value:       config.Level,
			Message:     err.Error(),
			Suggestions: []string{"Use debug, info, warn or error"},
		})
	}

	if config.Format != "" && config.Format != "text" && config.Format != "json" {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "log.format",
			Value:       config.Format,
			Message:     fmt.Sprintf("unknown log format %q", config.Format),
			Suggestions: []string{"Use text or json"},
		})
	}

	if config.Dir != "" {
		if err := validatePath(config.Dir); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "log.dir",
				Value:   config.Dir,
				Message: err.Error(),
			})
		}
	}
}

func validateStoreConfigDetails(config *StoreConfig, result *ValidationResult) {
	if config.Path == "" || config.Path == ":memory:" {
		return
	}
	if err := validatePath(config.Path); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "store.path",
			Value:   config.Path,
			Message: err.Error(),
		})
	}
}

// validatePath rejects parent-directory segments and shell metacharacters.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("path contains traversal: %s", path)
		}
	}

	cleanPath := filepath.Clean(path)
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
