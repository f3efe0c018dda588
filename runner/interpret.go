package runner

import (
	"errors"
	"fmt"
	"strings"
)

// Markers the external CLIs print on success. A command's success is
// recognized by the literal substring appearing in its output;
// identifiers are recognized by a line prefix.
const (
	MarkerTransactionConfirmed = "Transaction confirmed"
	MarkerCreatingToken        = "Creating token"
	MarkerCreatingAccount      = "Creating account"
	MarkerSignature            = "Signature:"

	PrefixInitializingNCN      = "Initializing NCN:"
	PrefixInitializingOperator = "Initializing Operator:"
	PrefixInitializingVault    = "Initializing Vault at address:"
)

// ErrExtractionFailure is returned when an expected identifier is not
// found in a command's output.
var ErrExtractionFailure = errors.New("identifier not found in command output")

// Rule describes where an identifier lives in free-form CLI output:
// the last whitespace-delimited field of the first line containing
// [Prefix]. Matching rules are table-driven per call site rather than
// scattered through the pipeline.
type Rule struct {
	Prefix string
}

// Extract applies [rule] to [output]. It never returns an empty or
// partial identifier: a matching line that ends with the prefix itself
// is an extraction failure, not an empty result.
func Extract(output string, rule Rule) (string, error) {
	prefixFields := strings.Fields(rule.Prefix)
	if len(prefixFields) == 0 {
		return "", fmt.Errorf("%w: rule has an empty prefix", ErrExtractionFailure)
	}
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, rule.Prefix) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		last := fields[len(fields)-1]
		if last == prefixFields[len(prefixFields)-1] {
			return "", fmt.Errorf("%w: line %q carries no identifier after prefix %q",
				ErrExtractionFailure, line, rule.Prefix)
		}
		return last, nil
	}
	return "", fmt.Errorf("%w: no line matches prefix %q", ErrExtractionFailure, rule.Prefix)
}
