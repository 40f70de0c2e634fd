package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// Firestore limits a document ID to 1500 bytes.
const maxDocumentIDBytes = 1500

var reservedIDPattern = regexp.MustCompile(`^__.*__$`)

func ValidateString(value string, minLength int, maxLength int) error {
	n := len(value)
	if n < minLength || n > maxLength {
		return fmt.Errorf("must contain from %d to %d characters", minLength, maxLength)
	}

	return nil
}

// ValidateDocumentID reports whether value can be used as a single Firestore document ID.
func ValidateDocumentID(value string) error {
	if err := ValidateString(value, 1, maxDocumentIDBytes); err != nil {
		return err
	}

	if strings.Contains(value, "/") {
		return fmt.Errorf("must not contain a forward slash")
	}

	if value == "." || value == ".." {
		return fmt.Errorf("must not be %q", value)
	}

	if reservedIDPattern.MatchString(value) {
		return fmt.Errorf("must not match the reserved pattern __.*__")
	}

	return nil
}
