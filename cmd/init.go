package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# shcov configuration.
# Flags and SHCOV_* environment variables (e.g. SHCOV_RUN_PARALLEL) override
# the values below.`

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented shcov.yaml with the default settings",
		Long: `Create shcov.yaml in the current directory. Every setting is listed with
its default value and a short description. An existing file is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := filepath.Join(configFolderPath, configFileName)

			if err := writeDefaultConfig(target); err != nil {
				return err
			}

			cmd.Printf("wrote %s\n", target)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func writeDefaultConfig(target string) error {
	contents, err := renderDefaultConfig()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("config file %s already exists: %w", target, err)
		}

		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(contents); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// renderDefaultConfig builds shcov.yaml from configEntries. Dotted keys
// become nested mappings.
func renderDefaultConfig() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	for _, entry := range configEntries {
		parts := strings.Split(entry.key, ".")

		parent := root
		for _, part := range parts[:len(parts)-1] {
			parent = mappingChild(parent, part)
		}

		value := &yaml.Node{}
		if err := value.Encode(entry.value); err != nil {
			return nil, fmt.Errorf("encode %s: %w", entry.key, err)
		}

		key := &yaml.Node{
			Kind:        yaml.ScalarNode,
			Value:       parts[len(parts)-1],
			HeadComment: "# " + entry.comment,
		}
		parent.Content = append(parent.Content, key, value)
	}

	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: configHeader,
		Content:     []*yaml.Node{root},
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return buf.Bytes(), nil
}

// mappingChild returns the mapping stored under key, adding it when missing.
func mappingChild(parent *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			return parent.Content[i+1]
		}
	}

	child := &yaml.Node{Kind: yaml.MappingNode}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		child,
	)

	return child
}
