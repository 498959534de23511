// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the catalogue project using Mage.
//
// Usage:
//
//	mage build        Compile the catalogue binary to bin/
//	mage test:all     Run all tests
//	mage test:unit    Run tests except the end-to-end CLI suite
//	mage test:cover   Run all tests with a coverage profile
//	mage lint         Run golangci-lint
//	mage clean        Remove build artifacts
//	mage install      Install catalogue to GOPATH/bin
//	mage stats        Print Go LOC and documentation word counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "catalogue"
	binaryDir  = "bin"
	cmdDir     = "./cmd/catalogue"
	modulePath = "github.com/mesh-intelligence/catalogue"
)

// Build compiles the catalogue binary to bin/, stamping the version from
// the CATALOGUE_VERSION environment variable when set.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v"}
	if v := os.Getenv("CATALOGUE_VERSION"); v != "" {
		args = append(args, "-ldflags", "-X "+modulePath+"/pkg/catalogue.Version="+v)
	}
	args = append(args, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
	return sh.RunV(binGo, args...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove(coverProfile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
