package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFlagType(t *testing.T) {
	require.Equal(t, "integer", normalizeFlagType("int64"))
	require.Equal(t, "boolean", normalizeFlagType("bool"))
	require.Equal(t, "string", normalizeFlagType("duration"))
	require.Equal(t, "string", normalizeFlagType("string"))
}

func TestTypedFlagDefault(t *testing.T) {
	require.Equal(t, true, typedFlagDefault("bool", "true"))
	require.Equal(t, 42, typedFlagDefault("int", "42"))
	require.Equal(t, "oops", typedFlagDefault("int", "oops"))
	require.Equal(t, "abc", typedFlagDefault("string", "abc"))
}

func TestIsRequiredFlag(t *testing.T) {
	reqByAnnotation := &pflag.Flag{Annotations: map[string][]string{cobra.BashCompOneRequiredFlag: {"true"}}}
	require.True(t, isRequiredFlag(reqByAnnotation))

	reqByUsage := &pflag.Flag{Usage: "Plan file path (required)"}
	require.True(t, isRequiredFlag(reqByUsage))

	notReq := &pflag.Flag{Usage: "optional flag"}
	require.False(t, isRequiredFlag(notReq))
}

func TestParseEnumValues(t *testing.T) {
	require.Equal(t, []string{"waiting_for_event", "showing_intro", "active"}, parseEnumValues("Phase: waiting_for_event|showing_intro|active"))
	require.Equal(t, []string{"sqlite", "memory"}, parseEnumValues("Store kind (sqlite, memory)"))
	require.Nil(t, parseEnumValues("Example only (e.g. foo, bar)"))
	require.Nil(t, parseEnumValues(""))
}

func TestNormalizeEnumParts(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, normalizeEnumParts([]string{" a ", "[b]", "skip me", "1.2"}))
	require.Nil(t, normalizeEnumParts([]string{"onlyone"}))
}

func TestBuildCommandSchema_CollectsFlagsAndRequired(t *testing.T) {
	root := &cobra.Command{Use: "timegate"}
	root.PersistentFlags().String("plan", "", "Plan file (required)")

	child := &cobra.Command{Use: "tasks", Short: "List tasks"}
	child.Flags().String("format", "json", "Output format: json|table|yaml")
	child.Flags().String("hidden-flag", "x", "hidden")
	require.NoError(t, child.Flags().MarkHidden("hidden-flag"))
	root.AddCommand(child)

	schema := buildCommandSchema(child)
	require.Equal(t, "timegate tasks", schema.Command)
	require.Equal(t, "List tasks", schema.Description)

	props := schema.ArgsSchema["properties"].(map[string]any)
	require.Contains(t, props, "plan")
	require.Contains(t, props, "format")
	require.NotContains(t, props, "hidden-flag")

	format := props["format"].(map[string]any)
	require.Equal(t, "string", format["type"])
	require.Equal(t, "json", format["default"])
	require.Equal(t, []string{"json", "table", "yaml"}, format["enum"])

	required := schema.ArgsSchema["required"].([]string)
	require.Contains(t, required, "plan")
}

func TestCollectCommandSchemas_FiltersRootSchemaAndHidden(t *testing.T) {
	root := &cobra.Command{Use: "timegate"}
	schemaCmd := &cobra.Command{Use: "schema"}
	visible := &cobra.Command{Use: "status", Short: "Status"}
	hidden := &cobra.Command{Use: "secret", Hidden: true}

	root.AddCommand(schemaCmd, visible, hidden)

	var out []commandArgSchema
	collectCommandSchemas(root, &out)

	require.Len(t, out, 1)
	require.Equal(t, "timegate status", out[0].Command)
}
