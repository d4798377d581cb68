package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/jerry-desk/bridgecli/commands"
	"github.com/jerry-desk/bridgecli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

func resetFlags() {
	verbose, configPath = false, ""
	clusterDSN, clusterFromDB, clusterLimit, clusterStrict = "", false, 0, false
	neo4jTimeout = 0
}

// run executes the root command with stdin and returns what it printed
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runWithEnv(t, nil, stdin, args...)
}

func runWithEnv(t *testing.T, env map[string]string, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	for _, k := range []string{config.ConfigEnvVar, "MEMORY_DSN", "NEO4J_URI", "NEO4J_PASSWORD", "NEO4J_PASS", "NEO4J_TIMEOUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	})

	err := Execute(context.Background())
	return out.String(), err
}

func TestNeo4j_NoQueryIsFatal(t *testing.T) {
	out, err := run(t, "", "neo4j")

	var exitErr *commands.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.JSONEq(t, `{"success":false,"error":"No query provided"}`, out)
}

func TestNeo4j_BadParamsIsOperationFailure(t *testing.T) {
	out, err := run(t, "", "neo4j", "RETURN $n AS n", "{not json")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, false, doc["success"])
	assert.NotEmpty(t, doc["error"])
}

func TestNeo4j_EmptyArrayParamsAreAccepted(t *testing.T) {
	// an unreachable host fails at connection time, never on the parameters
	out, err := runWithEnv(t, map[string]string{"NEO4J_URI": "bolt://127.0.0.1:1", "NEO4J_TIMEOUT": "2s"}, "", "neo4j", "MATCH (n) RETURN count(n)", "[]")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, false, doc["success"])
	assert.NotContains(t, doc["error"], "parameters")
}

func TestNeo4j_TooManyArgs(t *testing.T) {
	_, err := run(t, "", "neo4j", "RETURN 1", "{}", "extra")
	assert.Error(t, err)
}

func TestCluster_EmptyStdin(t *testing.T) {
	out, err := run(t, "", "cluster")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestCluster_EmptyStdinIgnoresMemoryDSN(t *testing.T) {
	out, err := runWithEnv(t, map[string]string{"MEMORY_DSN": "postgres://unreachable.invalid/jerry"}, "", "cluster")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestCluster_EchoesSmallInput(t *testing.T) {
	input := `[{"id": 1, "content": "a"}, {"id": 2, "content": "b"}]`
	out, err := run(t, input, "cluster")
	require.NoError(t, err)
	assert.JSONEq(t, input, out)
}

func TestCluster_FailurePrintsEmptyArray(t *testing.T) {
	out, err := run(t, "{broken", "cluster")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestCluster_StrictFailureIsFatal(t *testing.T) {
	out, err := run(t, "{broken", "cluster", "--strict")

	var exitErr *commands.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, out, `"success":false`)
	assert.NotContains(t, out, "[]")
}

func TestRpc_UnknownMethod(t *testing.T) {
	out, err := run(t, `{"method":"files.delete"}`, "rpc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"method not found: files.delete"}`, out)
}

func TestRpc_Cluster(t *testing.T) {
	out, err := run(t, `{"method":"memory.cluster","params":{"memories":[{"id":"x"}]}}`, "rpc")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"x"}]`, out)
}

func TestDoctor(t *testing.T) {
	out, err := run(t, "", "doctor")
	require.NoError(t, err)

	var info commands.DoctorInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.True(t, info.Success)
	assert.Equal(t, GetVersion(), info.Version)
	assert.Equal(t, "bolt://localhost:7687", info.Neo4jURI)
}

func TestAuth_StoreAndLogout(t *testing.T) {
	out, err := run(t, "s3cret\n", "auth", "neo4j")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Password stored in keyring"}`, out)

	stored, err := keyring.Get(config.KeyringService, config.KeyringUser)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", stored)

	out, err = run(t, "", "auth", "logout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Password removed from keyring"}`, out)

	out, err = run(t, "", "auth", "logout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"No stored password"}`, out)
}

func TestAuth_EmptyPasswordIsFatal(t *testing.T) {
	out, err := run(t, "\n", "auth", "neo4j")

	var exitErr *commands.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, out, `"success":false`)
}
