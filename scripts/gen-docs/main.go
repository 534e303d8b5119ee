package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/pflag"

	"s3scanner/cmd"
	"s3scanner/internal/config"
)

func main() {
	docsDir := "./docs"

	// 既存のdocsディレクトリをクリーン
	if err := os.RemoveAll(docsDir); err != nil {
		log.Fatalf("Failed to clean docs directory: %v", err)
	}
	if err := os.MkdirAll(docsDir, 0755); err != nil {
		log.Fatalf("Failed to create docs directory: %v", err)
	}

	// ルートコマンドはdocs/README.mdとして生成し、環境変数の一覧を付ける
	readme, err := genMarkdown(cmd.RootCmd)
	if err != nil {
		log.Fatalf("Failed to generate root documentation: %v", err)
	}
	readme += envTable(cmd.RootCmd.Flags())
	if err := os.WriteFile(filepath.Join(docsDir, "README.md"), []byte(readme), 0644); err != nil {
		log.Fatalf("Failed to write root documentation: %v", err)
	}

	fileCount := 1
	for _, subCmd := range cmd.RootCmd.Commands() {
		if !subCmd.IsAvailableCommand() || subCmd.IsAdditionalHelpTopicCommand() {
			continue
		}
		content, err := genMarkdown(subCmd)
		if err != nil {
			log.Printf("Failed to generate documentation for %s: %v", subCmd.Name(), err)
			continue
		}
		filename := filepath.Join(docsDir, subCmd.Name()+".md")
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			log.Printf("Failed to write %s: %v", filename, err)
			continue
		}
		fileCount++
	}

	fmt.Printf("✅ Documentation generated in %s (%d files)\n", docsDir, fileCount)
}

// linkHandler は s3scanner.md へのリンクを README.md に向ける
func linkHandler(name string) string {
	if name == cmd.AppName+".md" {
		return "README.md"
	}
	return name
}

// genMarkdown は1コマンド分のMarkdownを生成
func genMarkdown(c *cobra.Command) (string, error) {
	c.DisableAutoGenTag = true
	buf := new(bytes.Buffer)
	if err := doc.GenMarkdownCustom(c, buf, linkHandler); err != nil {
		return "", fmt.Errorf("failed to generate markdown for %s: %w", c.CommandPath(), err)
	}
	return buf.String(), nil
}

// envTable はフラグに対応する環境変数の一覧表を生成
func envTable(flags *pflag.FlagSet) string {
	var b strings.Builder
	b.WriteString("\n### Environment variables\n\n")
	b.WriteString("| Flag | Environment variable | Default |\n")
	b.WriteString("|------|----------------------|---------|\n")
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" {
			return
		}
		env := config.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		fmt.Fprintf(&b, "| `--%s` | `%s` | `%s` |\n", f.Name, env, f.DefValue)
	})
	return b.String()
}
