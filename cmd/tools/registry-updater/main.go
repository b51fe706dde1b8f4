// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"loan-approval-client/pkg/registry"
)

const defaultPath = "configs/form-options.json"

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	initPath := initCmd.String("path", defaultPath, "Path to registry file")
	force := initCmd.Bool("force", false, "Overwrite an existing file")

	addPath := addCmd.String("path", defaultPath, "Path to registry file")
	section := addCmd.String("section", "", "Section ("+strings.Join(registry.Sections(), ", ")+")")
	value := addCmd.String("value", "", "Option value sent to the scoring service (e.g., pa)")
	label := addCmd.String("label", "", "Display label (e.g., Punjabi)")

	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		err = initRegistry(*initPath, *force)
		if err == nil {
			fmt.Printf("Wrote default form options to %s\n", *initPath)
		}

	case "add":
		addCmd.Parse(os.Args[2:])
		if *section == "" || *value == "" {
			fmt.Println("Error: section and value are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		err = addOption(*addPath, *section, registry.Option{Value: *value, Label: *label})
		if err == nil {
			fmt.Printf("Added %s option: %s\n", *section, *value)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err = validateRegistry(*validatePath)

	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func initRegistry(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	return registry.SaveRegistry(registry.Default(), path)
}

func addOption(path, section string, opt registry.Option) error {
	reg, err := registry.LoadRegistry(path)
	if errors.Is(err, fs.ErrNotExist) {
		reg = registry.Default()
	} else if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if err := reg.AddOption(section, opt); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	return registry.SaveRegistry(reg, path)
}

func validateRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	fmt.Printf("Registry validation passed. %d languages, %d employment types, %d income sources.\n",
		len(reg.Languages), len(reg.EmploymentTypes), len(reg.IncomeSources))
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Manages the JSON form options file read by 'loanctl --options-file'.

Commands:
  init      Write the built-in options to a file
  add       Add an option to a section
  validate  Validate the options file
  help      Show this help message

Examples:
  registry-updater init -path configs/form-options.json
  registry-updater add -section languages -value pa -label Punjabi
  registry-updater validate -path configs/form-options.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
