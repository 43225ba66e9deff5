//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for casemap developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI defaults point at.
var projectDirs = []string{
	"docs",
	"markdown/images",
	"outlines",
	"xmind",
	".casemap",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "casemap"
	cmdPkg  = "./cmd/casemap"
)

// Build compiles the CLI binary into bin/, stamping the git version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Extract converts every document in docs/ to markdown.
func Extract() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "extract", "--batch")
}

// Outline converts every outline in outlines/ to an XMind map.
func Outline() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "outline", "--batch")
}

// Stats prints project metrics: Go production/test LOC and the size of the
// working directories.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)

	for _, dir := range []struct{ path, ext string }{
		{"docs", ""},
		{"markdown", ".md"},
		{"outlines", ""},
		{"xmind", ".xmind"},
	} {
		n, err := countFiles(dir.path, dir.ext)
		if err != nil {
			return err
		}
		fmt.Printf("Files in %-10s %d\n", dir.path+":", n)
	}
	return nil
}

// countGoLines counts non-blank lines in production and test Go files,
// skipping the read-only example corpus.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := nonBlankLines(data)
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

func nonBlankLines(data []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n
}

// countFiles counts regular files under root with the given extension
// (any extension when ext is empty). A missing directory counts as zero.
func countFiles(root, ext string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext == "" || strings.EqualFold(filepath.Ext(path), ext) {
			total++
		}
		return nil
	})
	return total, err
}
