package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIdentifier(t *testing.T) {
	output := "some preamble\nInitializing NCN: ABC123\ntrailing noise\n"

	id, err := Extract(output, Rule{Prefix: PrefixInitializingNCN})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", id)
}

func TestExtractLastFieldOfMatchingLine(t *testing.T) {
	output := "Initializing Vault at address: 9f8G7h\n"

	id, err := Extract(output, Rule{Prefix: PrefixInitializingVault})
	require.NoError(t, err)
	assert.Equal(t, "9f8G7h", id)
}

func TestExtractNoMatchingLine(t *testing.T) {
	output := "Transaction confirmed\nSignature: 5trx\n"

	_, err := Extract(output, Rule{Prefix: PrefixInitializingOperator})
	require.ErrorIs(t, err, ErrExtractionFailure)
}

func TestExtractPrefixWithoutIdentifier(t *testing.T) {
	// the matching line ends with the prefix itself; returning an
	// empty or partial identifier here would poison later stages
	output := "Initializing NCN:\n"

	_, err := Extract(output, Rule{Prefix: PrefixInitializingNCN})
	require.ErrorIs(t, err, ErrExtractionFailure)
}

func TestExtractEmptyOutput(t *testing.T) {
	_, err := Extract("", Rule{Prefix: PrefixInitializingNCN})
	require.ErrorIs(t, err, ErrExtractionFailure)
}

func TestExtractEmptyPrefixRule(t *testing.T) {
	// an empty prefix matches every line, blank ones included; it must
	// be rejected, not panic or return an arbitrary field
	for _, rule := range []Rule{{Prefix: ""}, {Prefix: "   "}} {
		_, err := Extract("\nsome output\n", rule)
		require.ErrorIs(t, err, ErrExtractionFailure)
	}
}
