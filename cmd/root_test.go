package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag in the tree to its default. The root command is
// a package-level singleton so parsed values (help included) outlive Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	resetFlags(cmd)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{
			name:           "root command without args shows help",
			args:           []string{},
			expectedOutput: "Genre Classification API",
		},
		{
			name:           "root command with --help",
			args:           []string{"--help"},
			expectedOutput: "Available Commands:",
		},
		{
			name:    "root command with invalid flag",
			args:    []string{"--invalid-flag"},
			wantErr: true,
		},
		{
			name:           "serve help",
			args:           []string{"serve", "--help"},
			expectedOutput: "Start the Genre Classification API server",
		},
		{
			name:           "classify help",
			args:           []string{"classify", "--help"},
			expectedOutput: "Classify one or more local audio files",
		},
		{
			name:    "classify needs a file",
			args:    []string{"classify"},
			wantErr: true,
		},
		{
			name:           "listen help",
			args:           []string{"listen", "--help"},
			expectedOutput: "monitor source",
		},
		{
			name:           "migrate help",
			args:           []string{"migrate", "--help"},
			expectedOutput: "Manage the prediction history database",
		},
		{
			name:    "serve with invalid port",
			args:    []string{"serve", "--port", "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.expectedOutput != "" {
				assert.True(t, strings.Contains(out, tt.expectedOutput), "output %q should contain %q", out, tt.expectedOutput)
			}
		})
	}
}

func TestCommandFlags(t *testing.T) {
	root := NewRootCmd()

	logFlag := root.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logFlag)
	assert.Equal(t, "info", logFlag.DefValue)

	tests := []struct {
		command string
		flags   []string
	}{
		{"serve", []string{"host", "port"}},
		{"classify", []string{"json", "top"}},
		{"listen", []string{"duration", "loop", "device", "top"}},
		{"version", []string{"short"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			require.Equal(t, tt.command, sub.Name())
			for _, name := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(name), "flag %s", name)
			}
		})
	}
}

func TestMigrateSubcommands(t *testing.T) {
	migrate, _, err := NewRootCmd().Find([]string{"migrate"})
	require.NoError(t, err)

	names := make([]string, 0)
	for _, child := range migrate.Commands() {
		names = append(names, child.Name())
	}
	assert.ElementsMatch(t, []string{"up", "status"}, names)
}

func TestHelpFlagDoesNotLeak(t *testing.T) {
	tests := []struct {
		name    string
		first   []string
		second  []string
		wantErr bool
	}{
		{name: "classify after help", first: []string{"classify", "--help"}, second: []string{"classify"}, wantErr: true},
		{name: "serve port after invalid port", first: []string{"serve", "--port", "invalid"}, second: []string{"serve", "--help"}},
		{name: "version long after short", first: []string{"version", "--short"}, second: []string{"version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _ = execute(t, tt.first...)
			out, err := execute(t, tt.second...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, "v"+Version+"\n", out)
		})
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "version", "--short", "--log-level", "loud")
	assert.Error(t, err)

	_, err = execute(t, "version", "--short", "--log-level", "info")
	assert.NoError(t, err)
}

func TestRepeatString(t *testing.T) {
	assert.Equal(t, "", repeatString("-", 0))
	assert.Equal(t, "---", repeatString("-", 3))
}
