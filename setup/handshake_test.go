package setup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPipeline(t *testing.T) (*fakeBackend, string) {
	cfg := testConfig(t)
	backend := &fakeBackend{}
	o := newTestOrchestrator(t, cfg, backend)
	require.NoError(t, o.Run(context.Background()))
	return backend, filepath.Dir(cfg.KeysDir)
}

// indexOf returns the position of the first command containing every
// given substring, or -1.
func indexOf(commands []string, substrings ...string) int {
	for i, c := range commands {
		match := true
		for _, s := range substrings {
			if !strings.Contains(c, s) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func TestHandshakeInitPrecedesWarmup(t *testing.T) {
	backend, _ := runPipeline(t)
	cmds := backend.commands

	for _, operator := range []string{"OperatorPubkey1", "OperatorPubkey2", "OperatorPubkey3"} {
		initIdx := indexOf(cmds, "ncn-operator-state initialize", operator)
		ncnWarmup := indexOf(cmds, "ncn-operator-state ncn-warmup", operator)
		opWarmup := indexOf(cmds, "ncn-operator-state operator-warmup", operator)
		require.GreaterOrEqual(t, initIdx, 0)
		assert.Less(t, initIdx, ncnWarmup)
		assert.Less(t, ncnWarmup, opWarmup)
	}

	assert.Less(t,
		indexOf(cmds, "ncn-vault-ticket initialize"),
		indexOf(cmds, "ncn-vault-ticket warmup"),
	)
	assert.Less(t,
		indexOf(cmds, "vault-ncn-ticket initialize"),
		indexOf(cmds, "vault-ncn-ticket warmup"),
	)
	for _, operator := range []string{"OperatorPubkey1", "OperatorPubkey2", "OperatorPubkey3"} {
		assert.Less(t,
			indexOf(cmds, "operator-vault-ticket initialize", operator),
			indexOf(cmds, "operator-vault-ticket warmup", operator),
		)
		assert.Less(t,
			indexOf(cmds, "initialize-operator-delegation", operator),
			indexOf(cmds, "delegate-to-operator", operator),
		)
	}
}

func TestHandshakeRelationshipGroupOrder(t *testing.T) {
	backend, _ := runPipeline(t)
	cmds := backend.commands

	// ncn<->operator before ncn<->vault before operator<->vault before
	// the reverse vault<->ncn ticket before delegation
	assert.Less(t,
		indexOf(cmds, "ncn-operator-state initialize"),
		indexOf(cmds, "ncn-vault-ticket initialize"),
	)
	assert.Less(t,
		indexOf(cmds, "ncn-vault-ticket initialize"),
		indexOf(cmds, "operator-vault-ticket initialize"),
	)
	assert.Less(t,
		indexOf(cmds, "operator-vault-ticket initialize"),
		indexOf(cmds, "vault-ncn-ticket initialize"),
	)
	assert.Less(t,
		indexOf(cmds, "vault-ncn-ticket initialize"),
		indexOf(cmds, "initialize-operator-delegation"),
	)
}

func TestHandshakeReplayScript(t *testing.T) {
	backend, rootDir := runPipeline(t)

	data, err := os.ReadFile(filepath.Join(rootDir, ReplayFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	// header plus one line per handshake command:
	// 3 operators * 3 + 2 (ncn<->vault) + 3*2 (operator<->vault)
	// + 2 (vault<->ncn) + 4 (asset infra) + 3*2 (delegation) = 29
	var commands []string
	for _, line := range lines {
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		commands = append(commands, line)
	}
	assert.Len(t, commands, 29)

	// commands are recorded verbatim and in execution order
	handshakeStart := indexOf(backend.commands, "ncn-operator-state initialize")
	require.GreaterOrEqual(t, handshakeStart, 0)
	assert.Equal(t, backend.commands[handshakeStart], commands[0])
	assert.Equal(t, backend.commands[len(backend.commands)-1], commands[len(commands)-1])
}
